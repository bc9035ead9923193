package postgresrepo

import (
	"testing"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/testsuite"
	"github.com/stretchr/testify/suite"
)

type OrderRepositorySuite struct {
	testsuite.BaseSuite
	repo *PostgresOrderRepository
}

func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(OrderRepositorySuite))
}

func (s *OrderRepositorySuite) SetupSuite() {
	s.SkipUnlessIntegration()
	s.SetupPostgres()
	s.repo = NewPostgresOrderRepository(s.PgClient.Pool())
}

func (s *OrderRepositorySuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *OrderRepositorySuite) SetupTest() {
	s.TruncateTables("payments", "order_items", "orders", "products", "accounts")

	s.exec(`INSERT INTO accounts (id, kind, name, email, password_hash) VALUES
		('c1', 'client', 'Seller One', 'one@example.com', 'x'),
		('c2', 'client', 'Seller Two', 'two@example.com', 'x'),
		('u1', 'user', 'Ann', 'ann@example.com', 'x')`)
	s.exec(`INSERT INTO products (id, client_id, name, price, stock) VALUES
		('p1', 'c1', 'Lamp', 100, 10),
		('p2', 'c2', 'Desk', 500, 10)`)
}

func (s *OrderRepositorySuite) exec(sql string, args ...any) {
	_, err := s.PgClient.Pool().Exec(s.Ctx, sql, args...)
	s.Require().NoError(err)
}

func (s *OrderRepositorySuite) place(id, productID string, at time.Time) {
	s.Require().NoError(s.repo.Insert(s.Ctx, order.Order{
		ID:          id,
		UserID:      "u1",
		Status:      order.StatusPending,
		TotalAmount: 100,
		CreatedAt:   at,
		UpdatedAt:   at,
	}))
	s.exec(`INSERT INTO order_items (id, order_id, product_id, quantity, price) VALUES ($1, $2, $3, 1, 100)`,
		id+"-item", id, productID)
}

func (s *OrderRepositorySuite) TestQueryByClient() {
	now := time.Now().UTC().Truncate(time.Millisecond)
	s.place("o1", "p1", now.Add(-time.Hour))
	s.place("o2", "p2", now.Add(-time.Minute))
	s.place("o3", "p1", now)
	s.exec(`INSERT INTO payments (id, order_id, status, amount) VALUES ('pay1', 'o1', 'COMPLETED', 100)`)

	orders, err := s.repo.QueryByClient(s.Ctx, &order.QueryClientOrdersModel{ClientID: "c1"})
	s.Require().NoError(err)
	s.Require().Len(orders, 2)

	s.Equal("o3", orders[0].ID)
	s.False(orders[0].Paid)
	s.Equal("o1", orders[1].ID)
	s.True(orders[1].Paid)
	s.Equal("Ann", orders[1].BuyerName)

	page, err := s.repo.QueryByClient(s.Ctx, &order.QueryClientOrdersModel{ClientID: "c1", Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("o1", page[0].ID)
}

func (s *OrderRepositorySuite) TestUpdates() {
	s.place("o1", "p1", time.Now().UTC())

	s.Require().NoError(s.repo.UpdateStatus(s.Ctx, "o1", order.StatusShipped))
	s.Require().NoError(s.repo.UpdateReturnReason(s.Ctx, "o1", "broken"))

	got, err := s.repo.Get(s.Ctx, "o1")
	s.Require().NoError(err)
	s.Equal(order.StatusShipped, got.Status)
	s.Require().NotNil(got.ReturnReason)
	s.Equal("broken", *got.ReturnReason)

	s.ErrorIs(s.repo.UpdateStatus(s.Ctx, "missing", order.StatusPacked), apperr.ErrNotFound)

	_, err = s.repo.Get(s.Ctx, "missing")
	s.ErrorIs(err, apperr.ErrNotFound)
}
