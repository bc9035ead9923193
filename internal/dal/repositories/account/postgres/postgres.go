package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/jackc/pgx/v5"
)

type PostgresAccountRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresAccountRepository(conn postgres.GenericConn) *PostgresAccountRepository {
	return &PostgresAccountRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresAccountRepository) Insert(ctx context.Context, a user.Account) error {
	sql, args, err := r.sb.
		Insert("accounts").
		Columns("id", "kind", "name", "email", "password_hash", "created_at").
		Values(a.ID, string(a.Kind), a.Name, a.Email, a.PasswordHash, a.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		if postgres.HasCode(err, postgres.CodeUniqueViolation) {
			return fmt.Errorf("%s %s: %w", a.Kind, a.Email, apperr.ErrAlreadyExists)
		}

		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

func (r *PostgresAccountRepository) GetByEmail(
	ctx context.Context,
	kind user.Kind,
	email string,
) (*user.Account, error) {
	sql, args, err := r.sb.
		Select("id", "kind", "name", "email", "password_hash", "created_at").
		From("accounts").
		Where(sq.Eq{"kind": string(kind), "email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var a user.Account
	err = r.conn.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.Kind, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", kind, email, apperr.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &a, nil
}

func (r *PostgresAccountRepository) Exists(ctx context.Context, kind user.Kind, id string) (bool, error) {
	sql, args, err := r.sb.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("accounts").
		Where(sq.Eq{"kind": string(kind), "id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var exists bool
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account: %w", err)
	}

	return exists, nil
}

// QueryBuyersOfClient returns the users with at least one order containing a
// product of the client. OrderIDs lists only those orders, newest first.
func (r *PostgresAccountRepository) QueryBuyersOfClient(ctx context.Context, clientID string) ([]user.Buyer, error) {
	sql, args, err := r.sb.
		Select(
			"a.id",
			"a.name",
			"a.email",
			"array_agg(o.id ORDER BY o.created_at DESC, o.id) AS order_ids",
		).
		From("accounts a").
		Join("orders o ON o.user_id = a.id").
		Where(sq.Expr(
			"EXISTS (SELECT 1 FROM order_items oi JOIN products pr ON pr.id = oi.product_id "+
				"WHERE oi.order_id = o.id AND pr.client_id = ?)",
			clientID,
		)).
		GroupBy("a.id", "a.name", "a.email").
		OrderBy("a.name ASC", "a.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query buyers: %w", err)
	}

	buyers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.Buyer, error) {
		var b user.Buyer
		err := row.Scan(&b.ID, &b.Name, &b.Email, &b.OrderIDs)

		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan buyers: %w", err)
	}

	return buyers, nil
}
