package reviews

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/review"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
	"github.com/go-chi/chi/v5"
)

type service interface {
	CreateReview(ctx context.Context, userID, productID string, rating int, comment *string) (*review.Review, error)
	GetReviews(ctx context.Context, userID string) ([]review.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID string, patch review.Patch) (*review.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID string) error
}

type createReviewRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Rating    int     `json:"rating"    validate:"gte=1,lte=5"`
	Comment   *string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating"  validate:"omitnil,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

func (r *updateReviewRequest) toModel() review.Patch {
	return review.Patch{Rating: r.Rating, Comment: r.Comment}
}

// CreateReview handles POST /reviews.
func CreateReview(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	req := createReviewRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	created, err := service.CreateReview(r.Context(), caller.ID, req.ProductID, req.Rating, req.Comment)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusCreated, created)
}

// ListReviews handles GET /reviews for the calling user.
func ListReviews(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	reviews, err := service.GetReviews(r.Context(), caller.ID)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if reviews == nil {
		reviews = []review.Review{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, reviews)
}

// UpdateReview handles PATCH /reviews/{id}.
func UpdateReview(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	req := updateReviewRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	updated, err := service.UpdateReview(r.Context(), caller.ID, chi.URLParam(r, "id"), req.toModel())
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusOK, updated)
}

// DeleteReview handles DELETE /reviews/{id}.
func DeleteReview(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if err := service.DeleteReview(r.Context(), caller.ID, chi.URLParam(r, "id")); err != nil {
		httperr.Write(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
