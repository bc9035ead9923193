package icartrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/cart"
)

type ICartRepository interface {
	// Add inserts the item or increases the quantity of an existing one.
	Add(ctx context.Context, item cart.Item) (*cart.Item, error)
	QueryByUser(ctx context.Context, userID string) ([]cart.Item, error)
}
