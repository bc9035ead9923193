package uow

import (
	"context"
	"errors"

	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/product/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork groups the repositories that take part in order placement.
// Before Begin the repositories run against the pool; after Begin they share one transaction.
type UnitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	productRepo   iproductrepo.IProductRepository
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	u := &UnitOfWork{pool: client.Pool()}
	u.bind(client.Pool())

	return u
}

func (u *UnitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

// Begin opens a READ COMMITTED transaction and rebinds the repositories to it.
// Row locks taken with FOR UPDATE provide the isolation order placement needs.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback aborts the transaction. Rolling back a finished transaction is a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

func (u *UnitOfWork) bind(conn postgres.GenericConn) {
	u.productRepo = productrepo.NewPostgresProductRepository(conn)
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(conn)
}
