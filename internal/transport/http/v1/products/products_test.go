package products

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/corray333/backend-labs/shop/internal/transport/http/v1/auth"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	created  product.Product
	clientID string
	filter   *product.QueryProductsModel
}

func (s *stubCatalog) CreateProduct(_ context.Context, clientID string, p product.Product) (*product.Product, error) {
	s.clientID, s.created = clientID, p
	p.ClientID = clientID
	if p.ID == "" {
		p.ID = "generated"
	}

	return &p, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id string) (*product.Product, error) {
	if id != "p1" {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}

	return &product.Product{ID: "p1", Name: "Lamp", Price: 100, Stock: 3}, nil
}

func (s *stubCatalog) ListProducts(_ context.Context, filter *product.QueryProductsModel) ([]product.Product, error) {
	s.filter = filter

	return nil, nil
}

func asClient(r *http.Request) *http.Request {
	return r.WithContext(auth.WithPrincipal(r.Context(), user.Principal{ID: "c1", Kind: user.KindClient}))
}

func TestCreateProduct(t *testing.T) {
	svc := &stubCatalog{}
	rec := httptest.NewRecorder()
	body := `{"name":"Lamp","description":"desk","price":100,"stock":3}`

	CreateProduct(rec, asClient(httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))), svc)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "c1", svc.clientID)
	require.Equal(t, product.Product{Name: "Lamp", Description: "desk", Price: 100, Stock: 3}, svc.created)
	require.Contains(t, rec.Body.String(), `"id":"generated"`)

	for _, bad := range []string{`{"price":1}`, `{"name":"x","price":-1}`, `{"name":"x","stock":-2}`} {
		rec := httptest.NewRecorder()
		CreateProduct(rec, asClient(httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(bad))), svc)
		require.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

func TestCreateProduct_CategoryAndImages(t *testing.T) {
	svc := &stubCatalog{}
	rec := httptest.NewRecorder()
	body := `{"name":"Smartphone","categoryId":"electronics","images":["phone1.jpg","phone2.jpg"],"price":99900,"stock":50}`

	CreateProduct(rec, asClient(httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))), svc)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created.CategoryID)
	require.Equal(t, "electronics", *svc.created.CategoryID)
	require.Equal(t, []string{"phone1.jpg", "phone2.jpg"}, svc.created.Images)
	require.Contains(t, rec.Body.String(), `"categoryId":"electronics"`)
	require.Contains(t, rec.Body.String(), `"images":["phone1.jpg","phone2.jpg"]`)

	rec = httptest.NewRecorder()
	bad := `{"name":"x","images":["ok.jpg",""]}`
	CreateProduct(rec, asClient(httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(bad))), svc)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `images[1]`)
}

func TestGetProduct(t *testing.T) {
	router := chi.NewRouter()
	svc := &stubCatalog{}
	router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) { GetProduct(w, r, svc) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/p1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"Lamp"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts(t *testing.T) {
	svc := &stubCatalog{}
	rec := httptest.NewRecorder()

	ListProducts(rec, httptest.NewRequest(http.MethodGet, "/products?page=3&pageSize=10&clientIds=c9&categoryIds=books", nil), svc)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `[]`, rec.Body.String())
	require.Equal(t, &product.QueryProductsModel{
		ClientIds:   []string{"c9"},
		CategoryIds: []string{"books"},
		Limit:       10,
		Offset:      20,
	}, svc.filter)
}

func TestListClientProducts(t *testing.T) {
	svc := &stubCatalog{}
	rec := httptest.NewRecorder()

	ListClientProducts(rec, asClient(httptest.NewRequest(http.MethodGet, "/products/client?clientIds=other", nil)), svc)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"c1"}, svc.filter.ClientIds)
}
