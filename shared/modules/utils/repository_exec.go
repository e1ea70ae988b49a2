package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ExecType int

const (
	ExecInsert ExecType = iota
	ExecUpdate
	ExecDelete
)

var ErrNoRowsAffected = errors.New("no rows affected")

// ExecWithCheck runs a statement and, for updates and deletes, fails with
// ErrNoRowsAffected when nothing matched. Works with *sqlx.DB and *sqlx.Tx.
func ExecWithCheck(ctx context.Context, db sqlx.ExecerContext, query string, execType ExecType, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	if execType == ExecInsert {
		return nil
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}
