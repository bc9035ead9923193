package products

import (
	"context"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/httperr"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/request"
	"github.com/go-chi/chi/v5"
)

type service interface {
	CreateProduct(ctx context.Context, clientID string, p product.Product) (*product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}

type createProductRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description"`
	CategoryID  *string  `json:"categoryId"`
	Images      []string `json:"images"      validate:"max=20,dive,required"`
	Price       int64    `json:"price"       validate:"gte=0"`
	Stock       int64    `json:"stock"       validate:"gte=0"`
}

func (r *createProductRequest) toModel() product.Product {
	return product.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Images:      r.Images,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

type queryProductsRequest struct {
	Ids         []string `schema:"ids"`
	ClientIds   []string `schema:"clientIds"`
	CategoryIds []string `schema:"categoryIds"`
	Page      int      `schema:"page"     validate:"gte=0"`
	PageSize  int      `schema:"pageSize" validate:"gte=0"`
}

// toModel converts a 1-based page into limit and offset. A zero page size
// leaves the default to the service.
func (q *queryProductsRequest) toModel() *product.QueryProductsModel {
	page := max(q.Page, 1)

	return &product.QueryProductsModel{
		Ids:         q.Ids,
		ClientIds:   q.ClientIds,
		CategoryIds: q.CategoryIds,
		Limit:       q.PageSize,
		Offset:      (page - 1) * q.PageSize,
	}
}

// CreateProduct handles POST /products for the calling client.
func CreateProduct(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	req := createProductRequest{}
	if err := request.DecodeJSON(r, &req); err != nil {
		httperr.Write(w, r, err)

		return
	}

	created, err := service.CreateProduct(r.Context(), caller.ID, req.toModel())
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusCreated, created)
}

// GetProduct handles GET /products/{id}.
func GetProduct(w http.ResponseWriter, r *http.Request, service service) {
	p, err := service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	httperr.WriteJSON(w, r, http.StatusOK, p)
}

// ListProducts handles GET /products.
func ListProducts(w http.ResponseWriter, r *http.Request, service service) {
	query := queryProductsRequest{}
	if err := request.DecodeQuery(r, &query); err != nil {
		httperr.Write(w, r, err)

		return
	}

	list(w, r, service, query.toModel())
}

// ListClientProducts handles GET /products/client: the calling client's own products.
func ListClientProducts(w http.ResponseWriter, r *http.Request, service service) {
	caller, err := auth.Caller(r)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	query := queryProductsRequest{}
	if err := request.DecodeQuery(r, &query); err != nil {
		httperr.Write(w, r, err)

		return
	}

	filter := query.toModel()
	filter.ClientIds = []string{caller.ID}

	list(w, r, service, filter)
}

func list(w http.ResponseWriter, r *http.Request, service service, filter *product.QueryProductsModel) {
	products, err := service.ListProducts(r.Context(), filter)
	if err != nil {
		httperr.Write(w, r, err)

		return
	}

	if products == nil {
		products = []product.Product{}
	}

	httperr.WriteJSON(w, r, http.StatusOK, products)
}
