package productsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/redis/go-redis/v9"
)

const DefaultCacheTTL = 10 * time.Minute

type cachedProductService struct {
	next        Catalog
	redisClient *redis.Client
	cacheTTL    time.Duration
}

// NewCachedProductService puts a read-through Redis cache in front of GetProduct.
// Cache failures are logged and fall back to next.
func NewCachedProductService(next Catalog, redisClient *redis.Client, cacheTTL time.Duration) Catalog {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	return &cachedProductService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (s *cachedProductService) CreateProduct(
	ctx context.Context,
	clientID string,
	p product.Product,
) (*product.Product, error) {
	return s.next.CreateProduct(ctx, clientID, p)
}

func (s *cachedProductService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	key := productKey(id)

	val, err := s.redisClient.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p product.Product
		if err := json.Unmarshal(val, &p); err == nil {
			return &p, nil
		}
		slog.WarnContext(ctx, "Dropping malformed cached product", "key", key, "error", err)
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "Product cache read failed", "key", key, "error", err)
	}

	p, err := s.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return p, nil
	}

	if err := s.redisClient.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		slog.WarnContext(ctx, "Product cache write failed", "key", key, "error", err)
	}

	return p, nil
}

func (s *cachedProductService) ListProducts(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	return s.next.ListProducts(ctx, filter)
}

func (s *cachedProductService) IsProductAvailable(ctx context.Context, id string, qty int64) (bool, error) {
	return isAvailable(ctx, s, id, qty)
}

func (s *cachedProductService) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}

	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached products: %w", err)
	}

	return s.next.Invalidate(ctx, ids...)
}
