package ordersvc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/testsuite"
	"github.com/stretchr/testify/suite"
)

type PlaceOrderSuite struct {
	testsuite.BaseSuite
	svc *OrderService
}

func TestPlaceOrderSuite(t *testing.T) {
	suite.Run(t, new(PlaceOrderSuite))
}

func (s *PlaceOrderSuite) SetupSuite() {
	s.SkipUnlessIntegration()
	s.SetupPostgres()

	s.svc = MustNewOrderService(
		WithPostgresClient(s.PgClient),
		WithRetryPolicy(3, 5*time.Millisecond),
		WithTxTimeout(5*time.Second),
	)
}

func (s *PlaceOrderSuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *PlaceOrderSuite) SetupTest() {
	s.TruncateTables("outbox", "order_items", "orders", "products", "accounts")

	s.exec(`INSERT INTO accounts (id, kind, name, email, password_hash) VALUES
		('c1', 'client', 'Seller', 'seller@example.com', 'x'),
		('u1', 'user', 'Buyer', 'buyer@example.com', 'x')`)
}

func (s *PlaceOrderSuite) exec(sql string, args ...any) {
	_, err := s.PgClient.Pool().Exec(s.Ctx, sql, args...)
	s.Require().NoError(err)
}

func (s *PlaceOrderSuite) seedProduct(id string, price, stock int64) {
	s.exec(`INSERT INTO products (id, client_id, name, price, stock) VALUES ($1, 'c1', $1, $2, $3)`, id, price, stock)
}

func (s *PlaceOrderSuite) stock(id string) int64 {
	var stock int64
	s.Require().NoError(s.PgClient.Pool().QueryRow(s.Ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock))

	return stock
}

func (s *PlaceOrderSuite) count(table string) int {
	var n int
	s.Require().NoError(s.PgClient.Pool().QueryRow(s.Ctx, `SELECT count(*) FROM `+table).Scan(&n))

	return n
}

func (s *PlaceOrderSuite) TestPersistsOrderItemsStockAndEvent() {
	s.seedProduct("p1", 100, 5)
	s.seedProduct("p2", 50, 2)

	placed, err := s.svc.PlaceOrder(s.Ctx, "u1", []order.Line{
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p1", Quantity: 2},
	})
	s.Require().NoError(err)
	s.Equal(int64(250), placed.TotalAmount)

	s.Equal(int64(3), s.stock("p1"))
	s.Equal(int64(1), s.stock("p2"))

	var total int64
	var status string
	s.Require().NoError(s.PgClient.Pool().QueryRow(s.Ctx,
		`SELECT total_amount, status FROM orders WHERE id = $1`, placed.ID).Scan(&total, &status))
	s.Equal(int64(250), total)
	s.Equal(string(order.StatusPending), status)

	s.Equal(2, s.count("order_items"))

	var routingKey, messageKey string
	s.Require().NoError(s.PgClient.Pool().QueryRow(s.Ctx,
		`SELECT routing_key, message_key FROM outbox`).Scan(&routingKey, &messageKey))
	s.Equal(order.CreatedEventType, routingKey)
	s.Equal(placed.ID, messageKey)

	orders, err := s.svc.GetOrders(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Len(orders[0].OrderItems, 2)
}

func (s *PlaceOrderSuite) TestItemsKeepPriceAtPlacement() {
	s.seedProduct("p1", 100, 5)

	placed, err := s.svc.PlaceOrder(s.Ctx, "u1", []order.Line{{ProductID: "p1", Quantity: 1}})
	s.Require().NoError(err)

	s.exec(`UPDATE products SET price = 999 WHERE id = 'p1'`)

	var price int64
	s.Require().NoError(s.PgClient.Pool().QueryRow(s.Ctx,
		`SELECT price FROM order_items WHERE order_id = $1`, placed.ID).Scan(&price))
	s.Equal(int64(100), price)
}

func (s *PlaceOrderSuite) TestFailureLeavesNoPartialState() {
	s.seedProduct("p1", 100, 5)
	s.seedProduct("p2", 50, 0)

	_, err := s.svc.PlaceOrder(s.Ctx, "u1", []order.Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
	})

	var stockErr *apperr.InsufficientStockError
	s.Require().ErrorAs(err, &stockErr)
	s.Equal("p2", stockErr.ProductID)
	s.Equal(int64(0), stockErr.Available)

	s.Equal(int64(5), s.stock("p1"))
	s.Zero(s.count("orders"))
	s.Zero(s.count("order_items"))
	s.Zero(s.count("outbox"))
}

func (s *PlaceOrderSuite) TestUnknownProductIsUnavailable() {
	s.seedProduct("p1", 100, 5)

	_, err := s.svc.PlaceOrder(s.Ctx, "u1", []order.Line{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "ghost", Quantity: 1},
	})

	s.Require().ErrorIs(err, apperr.ErrProductsUnavailable)
	s.Equal(int64(5), s.stock("p1"))
}

func (s *PlaceOrderSuite) TestLockedProductFailsFast() {
	s.seedProduct("p1", 100, 5)

	tx, err := s.PgClient.Pool().Begin(s.Ctx)
	s.Require().NoError(err)
	defer func() { _ = tx.Rollback(context.Background()) }()

	_, err = tx.Exec(s.Ctx, `SELECT id FROM products WHERE id = 'p1' FOR UPDATE`)
	s.Require().NoError(err)

	start := time.Now()
	_, err = s.svc.PlaceOrder(s.Ctx, "u1", []order.Line{{ProductID: "p1", Quantity: 1}})

	s.Require().ErrorIs(err, apperr.ErrProductsUnavailable)
	s.Less(time.Since(start), time.Second, "skip locked must not wait for the holder")

	s.Require().NoError(tx.Rollback(s.Ctx))
	s.Equal(int64(5), s.stock("p1"))
}

func (s *PlaceOrderSuite) TestConcurrentBuyersNeverOversell() {
	const (
		stock   = 10
		buyers  = 40
		perUser = 1
	)
	s.seedProduct("p1", 10, stock)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		unknown   []error
	)

	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.svc.PlaceOrder(s.Ctx, "u1", []order.Line{{ProductID: "p1", Quantity: perUser}})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperr.ErrProductsUnavailable),
				errors.Is(err, apperr.ErrInsufficientStock),
				errors.Is(err, apperr.ErrTransactionConflict):
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	s.Empty(unknown)
	s.LessOrEqual(succeeded, stock)
	s.Positive(succeeded)
	s.Equal(int64(stock-succeeded*perUser), s.stock("p1"))
	s.Equal(succeeded, s.count("orders"))
	s.Equal(succeeded, s.count("outbox"))
}
