package payments

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/payment"
	"github.com/corray333/backend-labs/shop/internal/service/services/paymentsvc"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
)

type service interface {
	CreatePayment(ctx context.Context, userID string, in paymentsvc.CreatePaymentInput) (*payment.Payment, error)
	GetPaymentsByUser(ctx context.Context, userID string) ([]payment.Payment, error)
	GetPaymentsByClient(ctx context.Context, clientID string) ([]payment.ClientPayment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
}

type createPaymentRequest struct {
	OrderID         string  `json:"orderId"         validate:"required"`
	PaymentMethodID *string `json:"paymentMethodId"`
	Status          string  `json:"status"`
	Amount          int64   `json:"amount"          validate:"gte=0"`
}

func (r *createPaymentRequest) toModel() paymentsvc.CreatePaymentInput {
	return paymentsvc.CreatePaymentInput{
		OrderID:         r.OrderID,
		PaymentMethodID: r.PaymentMethodID,
		Status:          r.Status,
		Amount:          r.Amount,
	}
}

type updateStatusRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
	Status    string `json:"status"    validate:"required"`
}

// CreatePayment handles POST /payments.
func CreatePayment(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	req := createPaymentRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	created, err := service.CreatePayment(r.Context(), caller.ID, req.toModel())
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusCreated, created)
}

// ListPayments handles GET /payments for the calling user.
func ListPayments(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	payments, err := service.GetPaymentsByUser(r.Context(), caller.ID)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if payments == nil {
		payments = []payment.Payment{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, payments)
}

// ListClientPayments handles GET /payments/client.
func ListClientPayments(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	payments, err := service.GetPaymentsByClient(r.Context(), caller.ID)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if payments == nil {
		payments = []payment.ClientPayment{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, payments)
}

// UpdateStatus handles PATCH /payments/status.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	req := updateStatusRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	if err := service.UpdatePaymentStatus(r.Context(), req.PaymentID, req.Status); err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusOK, httperr.Message{Message: "payment status updated"})
}
