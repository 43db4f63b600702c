package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	infralogger "github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
)

// TxFunc is a unit of work run inside a transaction.
type TxFunc func(tx *sqlx.Tx) error

// WithTx runs fn in a transaction at the default isolation level. The
// transaction commits when fn returns nil and rolls back otherwise, including
// when fn panics.
func WithTx(ctx context.Context, db *sqlx.DB, log infralogger.Logger, fn TxFunc) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx, log)
			panic(p)
		}
		if err != nil {
			rollback(tx, log)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func rollback(tx *sqlx.Tx, log infralogger.Logger) {
	// ErrTxDone follows a failed commit; nothing is left to undo.
	if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
		log.Error("Failed to rollback transaction", infralogger.Error(rbErr))
	}
}
