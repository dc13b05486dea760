package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roster-etl/internal/models"
)

// GradeRepository handles Notas persistence.
type GradeRepository struct{}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository() *GradeRepository {
	return &GradeRepository{}
}

// CreateWithTx inserts one grade row linking a student and a subject.
func (r *GradeRepository) CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, grade *models.Grade) error {
	const query = `INSERT INTO Notas (cert1, apoio1, cert2, apoio2, pfv, estudante_id, materia_id) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	id, err := insertReturningID(ctx, tx, query,
		grade.Cert1,
		grade.Support1,
		grade.Cert2,
		grade.Support2,
		grade.FinalValue,
		grade.StudentID,
		grade.SubjectID,
	)
	if err != nil {
		return fmt.Errorf("create grade for student %d subject %d: %w", grade.StudentID, grade.SubjectID, err)
	}
	grade.ID = id
	return nil
}
