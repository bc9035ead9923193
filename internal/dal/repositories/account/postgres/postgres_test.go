package postgresrepo

import (
	"testing"

	"github.com/corray333/backend-labs/shop/internal/testsuite"
	"github.com/stretchr/testify/suite"
)

type AccountRepositorySuite struct {
	testsuite.BaseSuite
	repo *PostgresAccountRepository
}

func TestAccountRepositorySuite(t *testing.T) {
	suite.Run(t, new(AccountRepositorySuite))
}

func (s *AccountRepositorySuite) SetupSuite() {
	s.SkipUnlessIntegration()
	s.SetupPostgres()
	s.repo = NewPostgresAccountRepository(s.PgClient.Pool())
}

func (s *AccountRepositorySuite) TearDownSuite() {
	s.TearDownInfrastructure()
}

func (s *AccountRepositorySuite) SetupTest() {
	s.TruncateTables("order_items", "orders", "products", "accounts")
}

func (s *AccountRepositorySuite) exec(sql string) {
	_, err := s.PgClient.Pool().Exec(s.Ctx, sql)
	s.Require().NoError(err)
}

func (s *AccountRepositorySuite) TestQueryBuyersOfClient() {
	s.exec(`INSERT INTO accounts (id, kind, name, email, password_hash) VALUES
		('c1', 'client', 'Seller One', 'one@example.com', 'x'),
		('c2', 'client', 'Seller Two', 'two@example.com', 'x'),
		('u1', 'user', 'Ann', 'ann@example.com', 'x'),
		('u2', 'user', 'Bob', 'bob@example.com', 'x'),
		('u3', 'user', 'Cid', 'cid@example.com', 'x')`)
	s.exec(`INSERT INTO products (id, client_id, name, price, stock) VALUES
		('p1', 'c1', 'Lamp', 100, 10),
		('p2', 'c2', 'Desk', 500, 10)`)
	s.exec(`INSERT INTO orders (id, user_id, total_amount, created_at) VALUES
		('o1', 'u1', 100, now() - interval '2 hours'),
		('o2', 'u1', 600, now() - interval '1 hour'),
		('o3', 'u1', 500, now()),
		('o4', 'u2', 500, now()),
		('o5', 'u3', 100, now())`)
	s.exec(`INSERT INTO order_items (id, order_id, product_id, quantity, price) VALUES
		('i1', 'o1', 'p1', 1, 100),
		('i2', 'o2', 'p1', 1, 100),
		('i3', 'o2', 'p2', 1, 500),
		('i4', 'o3', 'p2', 1, 500),
		('i5', 'o4', 'p2', 1, 500),
		('i6', 'o5', 'p1', 1, 100)`)

	buyers, err := s.repo.QueryBuyersOfClient(s.Ctx, "c1")
	s.Require().NoError(err)
	s.Require().Len(buyers, 2)

	s.Equal("u1", buyers[0].ID)
	s.Equal("Ann", buyers[0].Name)
	s.Equal("ann@example.com", buyers[0].Email)
	s.Equal([]string{"o2", "o1"}, buyers[0].OrderIDs)

	s.Equal("u3", buyers[1].ID)
	s.Equal([]string{"o5"}, buyers[1].OrderIDs)

	none, err := s.repo.QueryBuyersOfClient(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(none)
}
