package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roster-etl/internal/models"
)

// SubjectRepository manages persistence for Materia.
type SubjectRepository struct{}

// NewSubjectRepository constructs a new subject repository.
func NewSubjectRepository() *SubjectRepository {
	return &SubjectRepository{}
}

// CreateWithTx inserts a subject bound to its class.
func (r *SubjectRepository) CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, subject *models.Subject) error {
	const query = `INSERT INTO Materia (nome, turma_id) VALUES ($1, $2) RETURNING id`
	id, err := insertReturningID(ctx, tx, query, subject.Name, subject.ClassID)
	if err != nil {
		return fmt.Errorf("create subject %q: %w", subject.Name, err)
	}
	subject.ID = id
	return nil
}
