package cartsvc

import (
	"context"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	cartrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/cart/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/cart"
	"github.com/google/uuid"
)

type cartRepository interface {
	Add(ctx context.Context, item cart.Item) (*cart.Item, error)
	QueryByUser(ctx context.Context, userID string) ([]cart.Item, error)
}

// CartService keeps the products a user intends to buy. Stock is not reserved.
type CartService struct {
	items cartRepository

	now   func() time.Time
	newID func() string
}

type option func(*CartService)

func MustNewCartService(opts ...option) *CartService {
	s := &CartService{
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.items == nil {
		panic("cartsvc: repository is required")
	}

	return s
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *CartService) {
		s.items = cartrepo.NewPostgresCartRepository(pgClient.Pool())
	}
}

func withRepository(r cartRepository) option {
	return func(s *CartService) {
		s.items = r
	}
}

// AddToCart adds qty of the product, summing with an existing cart line.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, qty int64) (*cart.Item, error) {
	if productID == "" {
		return nil, apperr.NewValidationError("productId", "is required")
	}
	if qty <= 0 {
		return nil, apperr.NewValidationError("quantity", "must be positive")
	}

	now := s.now().UTC()

	return s.items.Add(ctx, cart.Item{
		ID:        s.newID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *CartService) GetCart(ctx context.Context, userID string) ([]cart.Item, error) {
	return s.items.QueryByUser(ctx, userID)
}
