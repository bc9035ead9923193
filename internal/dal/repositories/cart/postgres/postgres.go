package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/cart"
	"github.com/jackc/pgx/v5"
)

type PostgresCartRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresCartRepository(conn postgres.GenericConn) *PostgresCartRepository {
	return &PostgresCartRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Add inserts the item or adds its quantity to the existing cart line.
func (r *PostgresCartRepository) Add(ctx context.Context, item cart.Item) (*cart.Item, error) {
	sql, args, err := r.sb.
		Insert("cart_items").
		Columns("id", "user_id", "product_id", "quantity", "created_at", "updated_at").
		Values(item.ID, item.UserID, item.ProductID, item.Quantity, item.CreatedAt, item.UpdatedAt).
		Suffix(
			"ON CONFLICT (user_id, product_id) DO UPDATE " +
				"SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at " +
				"RETURNING id, quantity, created_at, updated_at",
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert query: %w", err)
	}

	out := item
	err = r.conn.QueryRow(ctx, sql, args...).Scan(&out.ID, &out.Quantity, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		if postgres.HasCode(err, postgres.CodeForeignKeyViolation) {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, apperr.ErrNotFound)
		}

		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return &out, nil
}

// QueryByUser returns the cart lines of a user with current product name and price.
func (r *PostgresCartRepository) QueryByUser(ctx context.Context, userID string) ([]cart.Item, error) {
	sql, args, err := r.sb.
		Select(
			"c.id", "c.user_id", "c.product_id", "p.name", "p.price", "c.quantity", "c.created_at", "c.updated_at",
		).
		From("cart_items c").
		Join("products p ON p.id = c.product_id").
		Where(sq.Eq{"c.user_id": userID}).
		OrderBy("c.created_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByPos[cart.Item])
	if err != nil {
		return nil, fmt.Errorf("failed to scan cart: %w", err)
	}

	return items, nil
}
