package database

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BradenHooton/family-album/internal/models"
)

// Postgres error codes the repositories care about
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// maxTxAttempts bounds WithTransaction retries on serialization failures
const maxTxAttempts = 3

// MapPostgresError translates pgx errors into model sentinel errors
func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return models.ErrConflict
	case codeForeignKeyViolation, codeNotNullViolation, codeCheckViolation:
		return models.ErrBadRequest
	case codeInvalidText:
		// a malformed uuid can never match a row
		return models.ErrNotFound
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
}

// WithTransaction runs fn inside a transaction, committing on success and
// rolling back on error or panic. fn is run again when Postgres aborts the
// transaction with a serialization failure or deadlock, so it must not keep
// state between calls.
func (db *DB) WithTransaction(ctx context.Context, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = db.runTx(ctx, fn)
		if !isRetryable(err) || ctx.Err() != nil {
			return err
		}
		if db.logger != nil {
			db.logger.Warn("retrying aborted transaction",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		}
	}
	return err
}

func (db *DB) runTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}
