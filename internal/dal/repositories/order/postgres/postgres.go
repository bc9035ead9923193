package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
)

// OrderDal represents order data access layer model
type OrderDal struct {
	Id           string    `db:"id"`
	UserId       string    `db:"user_id"`
	Status       string    `db:"status"`
	TotalAmount  int64     `db:"total_amount"`
	ReturnReason *string   `db:"return_reason"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model
func (o *OrderDal) ToModel() order.Order {
	return order.Order{
		ID:           o.Id,
		UserID:       o.UserId,
		Status:       order.Status(o.Status),
		TotalAmount:  o.TotalAmount,
		ReturnReason: o.ReturnReason,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		OrderItems:   []orderitem.OrderItem{}, // Will be populated separately
	}
}

// ClientOrderDal is an order row joined with its buyer and payment state.
type ClientOrderDal struct {
	OrderDal
	BuyerName string `db:"buyer_name"`
	Paid      bool   `db:"paid"`
}

var orderColumns = []string{
	"id", "user_id", "status", "total_amount", "return_reason", "created_at", "updated_at",
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.GenericConn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert inserts the order row. Items are stored by the order item repository.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) error {
	sql, args, err := r.sb.
		Insert("orders").
		Columns(orderColumns...).
		Values(o.ID, o.UserID, o.Status.String(), o.TotalAmount, o.ReturnReason, o.CreatedAt, o.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Get returns an order without its items.
func (r *PostgresOrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	orders, err := r.Query(ctx, &order.QueryOrdersModel{Ids: []string{id}, Limit: 1})
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
	}

	return &orders[0], nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(
	ctx context.Context,
	filter *order.QueryOrdersModel,
) ([]order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		OrderBy("created_at DESC", "id ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.UserIds) > 0 {
		query = query.Where(sq.Eq{"user_id": filter.UserIds})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByName[OrderDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	result := make([]order.Order, 0, len(dals))
	for i := range dals {
		result = append(result, dals[i].ToModel())
	}

	return result, nil
}

// QueryByClient returns orders containing at least one product of the client.
func (r *PostgresOrderRepository) QueryByClient(
	ctx context.Context,
	filter *order.QueryClientOrdersModel,
) ([]order.ClientOrder, error) {
	query := r.sb.
		Select(
			"o.id",
			"o.user_id",
			"o.status",
			"o.total_amount",
			"o.return_reason",
			"o.created_at",
			"o.updated_at",
			"a.name AS buyer_name",
			"EXISTS (SELECT 1 FROM payments p WHERE p.order_id = o.id) AS paid",
		).
		From("orders o").
		Join("accounts a ON a.id = o.user_id").
		Where(sq.Expr(
			"EXISTS (SELECT 1 FROM order_items oi JOIN products pr ON pr.id = oi.product_id "+
				"WHERE oi.order_id = o.id AND pr.client_id = ?)",
			filter.ClientID,
		)).
		OrderBy("o.created_at DESC", "o.id ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query client orders: %w", err)
	}

	dals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ClientOrderDal, error) {
		var d ClientOrderDal
		err := row.Scan(
			&d.Id,
			&d.UserId,
			&d.Status,
			&d.TotalAmount,
			&d.ReturnReason,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.BuyerName,
			&d.Paid,
		)

		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan client orders: %w", err)
	}

	result := make([]order.ClientOrder, 0, len(dals))
	for i := range dals {
		result = append(result, order.ClientOrder{
			Order:     dals[i].ToModel(),
			BuyerName: dals[i].BuyerName,
			Paid:      dals[i].Paid,
		})
	}

	return result, nil
}

// UpdateStatus sets the status of an order.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	return r.update(ctx, id, "status", status.String())
}

// UpdateReturnReason sets the return reason of an order.
func (r *PostgresOrderRepository) UpdateReturnReason(ctx context.Context, id, reason string) error {
	return r.update(ctx, id, "return_reason", reason)
}

func (r *PostgresOrderRepository) update(ctx context.Context, id, column string, value any) error {
	sql, args, err := r.sb.
		Update("orders").
		Set(column, value).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", column, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
	}

	return nil
}
