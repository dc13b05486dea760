package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// LoadTables lists the target tables, dependents first.
var LoadTables = []string{"Notas", "estudante", "Materia", "Turmas"}

// ResetRepository clears the target tables ahead of a replacing load.
type ResetRepository struct{}

// NewResetRepository constructs a reset repository.
func NewResetRepository() *ResetRepository {
	return &ResetRepository{}
}

// TruncateWithTx empties every load table and restarts their id sequences.
func (r *ResetRepository) TruncateWithTx(ctx context.Context, tx sqlx.ExecerContext) error {
	if tx == nil {
		return fmt.Errorf("nil executor provided")
	}
	query := "TRUNCATE TABLE " + strings.Join(LoadTables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("truncate load tables: %w", err)
	}
	return nil
}
