package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id        string    `db:"id"`
	OrderId   string    `db:"order_id"`
	ProductId string    `db:"product_id"`
	Quantity  int64     `db:"quantity"`
	Price     int64     `db:"price"`
	CreatedAt time.Time `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ID:        oi.Id,
		OrderID:   oi.OrderId,
		ProductID: oi.ProductId,
		Quantity:  oi.Quantity,
		Price:     oi.Price,
		CreatedAt: oi.CreatedAt,
	}
}

var orderItemColumns = []string{"id", "order_id", "product_id", "quantity", "price", "created_at"}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.GenericConn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts all items with a single multi-row INSERT.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) error {
	if len(orderItems) == 0 {
		return nil
	}

	query := r.sb.Insert("order_items").Columns(orderItemColumns...)
	for _, oi := range orderItems {
		query = query.Values(oi.ID, oi.OrderID, oi.ProductID, oi.Quantity, oi.Price, oi.CreatedAt)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return nil
}

// Query retrieves order items based on filter criteria.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	query := r.sb.
		Select(orderItemColumns...).
		From("order_items").
		OrderBy("order_id", "id")

	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Eq{"order_id": filter.OrderIds})
	}

	if len(filter.ProductIds) > 0 {
		query = query.Where(sq.Eq{"product_id": filter.ProductIds})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByName[OrderItemDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan order items: %w", err)
	}

	result := make([]orderitem.OrderItem, 0, len(dals))
	for i := range dals {
		result = append(result, dals[i].ToModel())
	}

	return result, nil
}
