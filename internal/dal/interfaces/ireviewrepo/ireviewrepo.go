package ireviewrepo

import (
	"context"

	"github.com/corray333/backend-labs/shop/internal/service/models/review"
)

type IReviewRepository interface {
	Insert(ctx context.Context, r review.Review) error
	Get(ctx context.Context, id string) (*review.Review, error)
	QueryByUser(ctx context.Context, userID string) ([]review.Review, error)
	Update(ctx context.Context, r review.Review) error
	Delete(ctx context.Context, id string) error
}
