package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"ferreteria/internal/core/apperror"
)

// PostgreSQL error codes the write path cares about.
// 40001 and 40P01 are the store's designated serialization/deadlock
// conflict signals; the retry loop recognizes them via apperror.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
)

// isConflictCode reports whether a PG error code is a retryable conflict.
func isConflictCode(code string) bool {
	return code == codeSerializationFailure || code == codeDeadlockDetected
}

// translateError classifies driver errors for the transaction boundary.
// Serialization conflicts become retryable AppErrors; everything else is
// returned unchanged so the caller sees the original error identity.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && isConflictCode(pgErr.Code) {
		return apperror.NewSerializationConflict(err)
	}

	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation.
// Repositories use it to surface duplicate-entry errors.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
