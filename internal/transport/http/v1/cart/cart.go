package cart

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/cart"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
)

type service interface {
	AddToCart(ctx context.Context, userID, productID string, qty int64) (*cart.Item, error)
	GetCart(ctx context.Context, userID string) ([]cart.Item, error)
}

type addToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity"  validate:"gt=0"`
}

// AddToCart handles POST /cart.
func AddToCart(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	req := addToCartRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	item, err := service.AddToCart(r.Context(), caller.ID, req.ProductID, req.Quantity)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusOK, item)
}

// GetCart handles GET /cart.
func GetCart(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	items, err := service.GetCart(r.Context(), caller.ID)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if items == nil {
		items = []cart.Item{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, items)
}
