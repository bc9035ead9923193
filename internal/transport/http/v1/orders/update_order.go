package orders

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
)

type updater interface {
	UpdateStatus(ctx context.Context, orderID, status string) error
	UpdateReturnReason(ctx context.Context, userID, orderID, reason string) error
}

type updateStatusRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Status  string `json:"status"  validate:"required"`
}

type updateReturnRequest struct {
	OrderID      string `json:"orderId"      validate:"required"`
	ReturnReason string `json:"returnReason" validate:"required"`
}

// UpdateStatus handles PATCH /orders/status.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service updater) {
	req := updateStatusRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	if err := service.UpdateStatus(r.Context(), req.OrderID, req.Status); err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusOK, httperr.Message{Message: "order status updated"})
}

// UpdateReturnReason handles PATCH /orders/return.
func UpdateReturnReason(w http.ResponseWriter, r *http.Request, service updater) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	req := updateReturnRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	if err := service.UpdateReturnReason(r.Context(), caller.ID, req.OrderID, req.ReturnReason); err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusOK, httperr.Message{Message: "return reason recorded"})
}
