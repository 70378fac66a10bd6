package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store-level errors. Services translate these into domain errors.
var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotInProgress means a write guarded on status = in_progress matched no row.
	ErrNotInProgress = errors.New("session is not in progress")
	// ErrWriteRejected means a guarded upsert matched no row. The caller decides why.
	ErrWriteRejected = errors.New("guarded write rejected")
	// ErrIncompleteKey means some test questions are missing from the bank.
	ErrIncompleteKey = errors.New("answer key incomplete")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
