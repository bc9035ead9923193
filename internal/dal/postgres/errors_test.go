package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsTransactionAbort(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "serialization", err: &pgconn.PgError{Code: CodeSerializationFailure}, want: true},
		{name: "deadlock", err: &pgconn.PgError{Code: CodeDeadlockDetected}, want: true},
		{name: "lock timeout", err: &pgconn.PgError{Code: CodeLockNotAvailable}, want: true},
		{name: "statement timeout", err: &pgconn.PgError{Code: CodeQueryCanceled}, want: true},
		{name: "idle in transaction", err: &pgconn.PgError{Code: CodeIdleInTransactionTimeout}, want: true},
		{name: "wrapped", err: fmt.Errorf("commit: %w", &pgconn.PgError{Code: CodeSerializationFailure}), want: true},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: CodeUniqueViolation}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsTransactionAbort(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation})

	require.True(t, HasCode(err, CodeUniqueViolation))
	require.False(t, HasCode(err, CodeForeignKeyViolation))
	require.False(t, HasCode(errors.New("x"), CodeUniqueViolation))
}
