package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
)

type placer interface {
	PlaceOrder(ctx context.Context, userID string, lines []order.Line) (*order.Order, error)
}

type catalog interface {
	IsProductAvailable(ctx context.Context, id string, qty int64) (bool, error)
}

type itemInPlaceOrderRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity"  validate:"gt=0"`
}

type placeOrderRequest struct {
	OrderItems []itemInPlaceOrderRequest `json:"orderItems" validate:"required,min=1,dive"`
}

func (r *placeOrderRequest) toModel() []order.Line {
	lines := make([]order.Line, len(r.OrderItems))
	for i, it := range r.OrderItems {
		lines[i] = order.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	return lines
}

// PlaceOrder handles POST /orders. The catalog check rejects obviously
// unsatisfiable requests early; the order service still decides under lock.
func PlaceOrder(w http.ResponseWriter, r *http.Request, service placer, catalog catalog) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	req := placeOrderRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	lines := req.toModel()

	if err := precheck(r.Context(), catalog, lines); err != nil {
		httperr.Write(w, r, err)

		return
	}

	placed, err := service.PlaceOrder(r.Context(), caller.ID, lines)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusCreated, placed)
}

// precheck reports products that are missing or short of stock. Lookup
// failures other than not found are logged and left to the order service.
func precheck(ctx context.Context, catalog catalog, lines []order.Line) error {
	requested := make(map[string]int64, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		prev, seen := requested[l.ProductID]
		if !seen {
			ids = append(ids, l.ProductID)
		}
		if prev > math.MaxInt64-l.Quantity {
			return apperr.NewValidationError("quantity", "total quantity overflows")
		}
		requested[l.ProductID] = prev + l.Quantity
	}

	var short []string
	for _, id := range ids {
		ok, err := catalog.IsProductAvailable(ctx, id, requested[id])
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return fmt.Errorf("product %s: %w", id, apperr.ErrProductsUnavailable)
		case err != nil:
			slog.WarnContext(ctx, "Availability check failed", "product_id", id, "error", err)
		case !ok:
			short = append(short, id)
		}
	}

	if len(short) > 0 {
		return fmt.Errorf("products %s: %w", strings.Join(short, ", "), apperr.ErrInsufficientStock)
	}

	return nil
}
