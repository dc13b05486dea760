package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roster-etl/internal/models"
)

// ClassRepository manages persistence for Turmas.
type ClassRepository struct{}

// NewClassRepository constructs a new class repository.
func NewClassRepository() *ClassRepository {
	return &ClassRepository{}
}

// CreateWithTx inserts a class using the given transaction and records the generated id.
func (r *ClassRepository) CreateWithTx(ctx context.Context, tx sqlx.QueryerContext, class *models.Class) error {
	const query = `INSERT INTO Turmas (nome, turno, serie) VALUES ($1, $2, $3) RETURNING id`
	id, err := insertReturningID(ctx, tx, query, class.Name, string(class.Shift), class.GradeLevel)
	if err != nil {
		return fmt.Errorf("create class %q: %w", class.Name, err)
	}
	class.ID = id
	return nil
}
