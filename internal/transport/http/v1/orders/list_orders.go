package orders

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/order"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
)

// DefaultClientPageSize is the page size of GET /orders/client when none is given.
const DefaultClientPageSize = 10

type lister interface {
	GetOrders(ctx context.Context, userID string) ([]order.Order, error)
	GetOrdersByClient(ctx context.Context, clientID string, page, pageSize int) ([]order.ClientOrder, error)
}

type queryClientOrdersRequest struct {
	Page     int `schema:"page"     validate:"gte=0"`
	PageSize int `schema:"pageSize" validate:"gte=0,max=100"`
}

// ListOrders handles GET /orders for the calling user.
func ListOrders(w http.ResponseWriter, r *http.Request, service lister) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	orders, err := service.GetOrders(r.Context(), caller.ID)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if orders == nil {
		orders = []order.Order{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, orders)
}

// ListClientOrders handles GET /orders/client for the calling client.
func ListClientOrders(w http.ResponseWriter, r *http.Request, service lister) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	query := queryClientOrdersRequest{}
	if err := request.DecodeQuery(r, &query); err != nil {
		httperr.Write(w, r, err)

		return
	}

	pageSize := query.PageSize
	if pageSize == 0 {
		pageSize = DefaultClientPageSize
	}

	orders, err := service.GetOrdersByClient(r.Context(), caller.ID, query.Page, pageSize)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if orders == nil {
		orders = []order.ClientOrder{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, orders)
}
