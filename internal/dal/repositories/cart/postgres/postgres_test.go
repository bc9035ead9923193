package postgresrepo

import (
	"testing"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/cart"
	"github.com/corray333/backend-labs/shop/internal/testsuite"
	"github.com/stretchr/testify/suite"
)

type CartRepositorySuite struct {
	testsuite.BaseSuite
	repo *PostgresCartRepository
}

func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(CartRepositorySuite))
}

func (s *CartRepositorySuite) SetupSuite() {
	s.SkipUnlessIntegration()
	s.SetupPostgres()
	s.repo = NewPostgresCartRepository(s.PgClient.Pool())
}

func (s *CartRepositorySuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *CartRepositorySuite) SetupTest() {
	s.TruncateTables("cart_items", "products", "accounts")

	_, err := s.PgClient.Pool().Exec(s.Ctx, `INSERT INTO accounts (id, kind, name, email, password_hash) VALUES
		('c1', 'client', 'Seller', 'seller@example.com', 'x'),
		('u1', 'user', 'Ann', 'ann@example.com', 'x')`)
	s.Require().NoError(err)

	_, err = s.PgClient.Pool().Exec(s.Ctx, `INSERT INTO products (id, client_id, name, price, stock) VALUES
		('p1', 'c1', 'Lamp', 100, 10)`)
	s.Require().NoError(err)
}

func (s *CartRepositorySuite) add(id, productID string, qty int64) (*cart.Item, error) {
	now := time.Now().UTC()

	return s.repo.Add(s.Ctx, cart.Item{
		ID: id, UserID: "u1", ProductID: productID, Quantity: qty, CreatedAt: now, UpdatedAt: now,
	})
}

func (s *CartRepositorySuite) TestAddSumsQuantities() {
	first, err := s.add("i1", "p1", 2)
	s.Require().NoError(err)
	s.Equal(int64(2), first.Quantity)

	second, err := s.add("i2", "p1", 3)
	s.Require().NoError(err)
	s.Equal("i1", second.ID, "the existing line is updated")
	s.Equal(int64(5), second.Quantity)

	items, err := s.repo.QueryByUser(s.Ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("Lamp", items[0].ProductName)
	s.Equal(int64(100), items[0].Price)
	s.Equal(int64(5), items[0].Quantity)
}

func (s *CartRepositorySuite) TestAddUnknownProduct() {
	_, err := s.add("i1", "ghost", 1)
	s.ErrorIs(err, apperr.ErrNotFound)
}
