package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// insertReturningID runs an INSERT ... RETURNING id statement and scans the generated id.
func insertReturningID(ctx context.Context, exec sqlx.QueryerContext, query string, args ...interface{}) (int64, error) {
	if exec == nil {
		return 0, fmt.Errorf("nil executor provided")
	}
	var id int64
	if err := exec.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
