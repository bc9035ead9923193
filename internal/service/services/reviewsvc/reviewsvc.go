package reviewsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	reviewrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/review/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/review"
	"github.com/google/uuid"
)

type reviewRepository interface {
	Insert(ctx context.Context, r review.Review) error
	Get(ctx context.Context, id string) (*review.Review, error)
	QueryByUser(ctx context.Context, userID string) ([]review.Review, error)
	Update(ctx context.Context, r review.Review) error
	Delete(ctx context.Context, id string) error
}

// ReviewService manages product reviews. Only the author may change a review.
type ReviewService struct {
	reviews reviewRepository

	now   func() time.Time
	newID func() string
}

type option func(*ReviewService)

func MustNewReviewService(opts ...option) *ReviewService {
	s := &ReviewService{
		now:   time.Now,
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.reviews == nil {
		panic("reviewsvc: repository is required")
	}

	return s
}

//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *ReviewService) {
		s.reviews = reviewrepo.NewPostgresReviewRepository(pgClient.Pool())
	}
}

func withRepository(r reviewRepository) option {
	return func(s *ReviewService) {
		s.reviews = r
	}
}

func (s *ReviewService) CreateReview(
	ctx context.Context,
	userID, productID string,
	rating int,
	comment *string,
) (*review.Review, error) {
	if productID == "" {
		return nil, apperr.NewValidationError("productId", "is required")
	}
	if err := checkRating(rating); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rv := review.Review{
		ID:        s.newID(),
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.reviews.Insert(ctx, rv); err != nil {
		return nil, err
	}

	return &rv, nil
}

func (s *ReviewService) GetReviews(ctx context.Context, userID string) ([]review.Review, error) {
	return s.reviews.QueryByUser(ctx, userID)
}

// UpdateReview applies the non-nil fields of patch.
func (s *ReviewService) UpdateReview(
	ctx context.Context,
	userID, reviewID string,
	patch review.Patch,
) (*review.Review, error) {
	rv, err := s.owned(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	if patch.Rating != nil {
		if err := checkRating(*patch.Rating); err != nil {
			return nil, err
		}
		rv.Rating = *patch.Rating
	}
	if patch.Comment != nil {
		rv.Comment = patch.Comment
	}
	rv.UpdatedAt = s.now().UTC()

	if err := s.reviews.Update(ctx, *rv); err != nil {
		return nil, err
	}

	return rv, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) error {
	if _, err := s.owned(ctx, userID, reviewID); err != nil {
		return err
	}

	return s.reviews.Delete(ctx, reviewID)
}

func (s *ReviewService) owned(ctx context.Context, userID, reviewID string) (*review.Review, error) {
	rv, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if rv.UserID != userID {
		return nil, fmt.Errorf("review %s: %w", reviewID, apperr.ErrForbidden)
	}

	return rv, nil
}

func checkRating(rating int) error {
	if rating < review.MinRating || rating > review.MaxRating {
		return apperr.NewValidationError("rating", fmt.Sprintf("must be between %d and %d", review.MinRating, review.MaxRating))
	}

	return nil
}
