package testsuite

import (
	"context"
	"fmt"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// BaseSuite starts throwaway PostgreSQL and Redis containers for integration tests.
type BaseSuite struct {
	suite.Suite
	PgContainer    *tcpostgres.PostgresContainer
	RedisContainer *tcredis.RedisContainer
	PgClient       *postgres.Client
	Redis          *redis.Client
	Ctx            context.Context
}

// SkipUnlessIntegration skips the suite in -short mode or without a container runtime.
func (s *BaseSuite) SkipUnlessIntegration() {
	if testing.Short() {
		s.T().Skip("integration test skipped in -short mode")
	}

	testcontainers.SkipIfProviderIsNotHealthy(s.T())
}

// SetupPostgres starts PostgreSQL, applies the migrations and opens a pool
// configured the same way as the service pool.
func (s *BaseSuite) SetupPostgres() {
	s.Ctx = context.Background()

	var err error
	s.PgContainer, err = tcpostgres.Run(
		s.Ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("test_db"),
		tcpostgres.WithUsername("test_user"),
		tcpostgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)

	connStr, err := s.PgContainer.ConnectionString(s.Ctx, "sslmode=disable")
	s.Require().NoError(err)

	cfg, err := pgxpool.ParseConfig(connStr)
	s.Require().NoError(err)
	cfg.MaxConns = 32
	postgres.ApplyTimeouts(cfg.ConnConfig, 5*time.Second, 2*time.Second, 10*time.Second)

	pool, err := pgxpool.NewWithConfig(s.Ctx, cfg)
	s.Require().NoError(err)
	s.Require().NoError(postgres.Migrate(pool))

	s.PgClient = postgres.NewClient(pool)
}

// SetupRedis starts Redis and connects a client to it.
func (s *BaseSuite) SetupRedis() {
	if s.Ctx == nil {
		s.Ctx = context.Background()
	}

	var err error
	s.RedisContainer, err = tcredis.Run(s.Ctx, "redis:7-alpine")
	s.Require().NoError(err)

	uri, err := s.RedisContainer.ConnectionString(s.Ctx)
	s.Require().NoError(err)

	opts, err := redis.ParseURL(uri)
	s.Require().NoError(err)

	s.Redis = redis.NewClient(opts)
	s.Require().NoError(s.Redis.Ping(s.Ctx).Err())
}

func (s *BaseSuite) TearDownInfrastructure() {
	if s.PgClient != nil {
		s.PgClient.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.PgContainer != nil {
		if err := s.PgContainer.Terminate(s.Ctx); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
	if s.RedisContainer != nil {
		if err := s.RedisContainer.Terminate(s.Ctx); err != nil {
			log.Printf("Failed to terminate redis container: %v", err)
		}
	}
}

func (s *BaseSuite) TruncateTables(tables ...string) {
	_, err := s.PgClient.Pool().Exec(s.Ctx, fmt.Sprintf("TRUNCATE %s CASCADE", strings.Join(tables, ", ")))
	s.Require().NoError(err)
}
