package postgresrepo

import (
	"context"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/payment"
	"github.com/jackc/pgx/v5"
)

// PaymentDal represents payment data access layer model.
type PaymentDal struct {
	Id              string    `db:"id"`
	OrderId         string    `db:"order_id"`
	PaymentMethodId *string   `db:"payment_method_id"`
	Status          string    `db:"status"`
	Amount          int64     `db:"amount"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (p *PaymentDal) ToModel() payment.Payment {
	return payment.Payment{
		ID:              p.Id,
		OrderID:         p.OrderId,
		PaymentMethodID: p.PaymentMethodId,
		Status:          payment.Status(p.Status),
		Amount:          p.Amount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

var paymentColumns = []string{
	"p.id", "p.order_id", "p.payment_method_id", "p.status", "p.amount", "p.created_at", "p.updated_at",
}

type PostgresPaymentRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresPaymentRepository(conn postgres.GenericConn) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert stores a payment. A second payment for the same order is rejected.
func (r *PostgresPaymentRepository) Insert(ctx context.Context, p payment.Payment) error {
	sql, args, err := r.sb.
		Insert("payments").
		Columns("id", "order_id", "payment_method_id", "status", "amount", "created_at", "updated_at").
		Values(p.ID, p.OrderID, p.PaymentMethodID, string(p.Status), p.Amount, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		if postgres.HasCode(err, postgres.CodeUniqueViolation) {
			return fmt.Errorf("payment for order %s: %w", p.OrderID, apperr.ErrAlreadyExists)
		}

		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

func (r *PostgresPaymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	payments, err := r.query(ctx, r.sb.Select(paymentColumns...).From("payments p").Where(sq.Eq{"p.id": id}))
	if err != nil {
		return nil, err
	}

	if len(payments) == 0 {
		return nil, fmt.Errorf("payment %s: %w", id, apperr.ErrNotFound)
	}

	return &payments[0], nil
}

// QueryByUser returns payments of the orders placed by the user.
func (r *PostgresPaymentRepository) QueryByUser(ctx context.Context, userID string) ([]payment.Payment, error) {
	return r.query(ctx, r.sb.
		Select(paymentColumns...).
		From("payments p").
		Join("orders o ON o.id = p.order_id").
		Where(sq.Eq{"o.user_id": userID}).
		OrderBy("p.created_at DESC"),
	)
}

// QueryByClient returns payments of orders containing products of the client.
func (r *PostgresPaymentRepository) QueryByClient(
	ctx context.Context,
	clientID string,
) ([]payment.ClientPayment, error) {
	sql, args, err := r.sb.
		Select(slices.Concat(paymentColumns, []string{"a.id", "a.name"})...).
		From("payments p").
		Join("orders o ON o.id = p.order_id").
		Join("accounts a ON a.id = o.user_id").
		Where(sq.Expr(
			"EXISTS (SELECT 1 FROM order_items oi JOIN products pr ON pr.id = oi.product_id "+
				"WHERE oi.order_id = o.id AND pr.client_id = ?)",
			clientID,
		)).
		OrderBy("p.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query client payments: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (payment.ClientPayment, error) {
		var (
			d   PaymentDal
			out payment.ClientPayment
		)
		err := row.Scan(
			&d.Id, &d.OrderId, &d.PaymentMethodId, &d.Status, &d.Amount, &d.CreatedAt, &d.UpdatedAt,
			&out.UserID, &out.UserName,
		)
		out.Payment = d.ToModel()

		return out, err
	})
}

func (r *PostgresPaymentRepository) UpdateStatus(ctx context.Context, id string, status payment.Status) error {
	sql, args, err := r.sb.
		Update("payments").
		Set("status", string(status)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment %s: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresPaymentRepository) query(ctx context.Context, q sq.SelectBuilder) ([]payment.Payment, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByPos[PaymentDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan payments: %w", err)
	}

	result := make([]payment.Payment, 0, len(dals))
	for i := range dals {
		result = append(result, dals[i].ToModel())
	}

	return result, nil
}
