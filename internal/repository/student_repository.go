package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roster-etl/internal/models"
)

// StudentRepository manages persistence for estudante.
type StudentRepository struct{}

// NewStudentRepository constructs a new student repository.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{}
}

// CreateWithTx inserts a student and records the generated id.
func (r *StudentRepository) CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, student *models.Student) error {
	const query = `INSERT INTO estudante (nome, nomeSocial, matricula, suspenso, foto, turma_id) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	id, err := insertReturningID(ctx, tx, query,
		student.Name,
		student.SocialName,
		student.Registration,
		student.Suspended,
		student.Photo,
		student.ClassID,
	)
	if err != nil {
		return fmt.Errorf("create student %q: %w", student.Registration, err)
	}
	student.ID = id
	return nil
}
