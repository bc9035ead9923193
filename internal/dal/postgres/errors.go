package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories care about.
const (
	CodeSerializationFailure     = "40001"
	CodeDeadlockDetected         = "40P01"
	CodeLockNotAvailable         = "55P03"
	CodeQueryCanceled            = "57014"
	CodeIdleInTransactionTimeout = "25P03"
	CodeUniqueViolation          = "23505"
	CodeForeignKeyViolation      = "23503"
	CodeCheckViolation           = "23514"
)

var abortCodes = map[string]struct{}{
	CodeSerializationFailure:     {},
	CodeDeadlockDetected:         {},
	CodeLockNotAvailable:         {},
	CodeQueryCanceled:            {},
	CodeIdleInTransactionTimeout: {},
}

// IsTransactionAbort reports whether err means the store gave up on the
// transaction: a serialization or lock conflict, a server-side timeout, or the
// caller's deadline expiring mid-transaction.
func IsTransactionAbort(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := abortCodes[pgErr.Code]

		return ok
	}

	return false
}

// HasCode reports whether err is a PgError with the given SQLSTATE.
func HasCode(err error, code string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == code
}
