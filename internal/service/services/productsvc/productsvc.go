package productsvc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	accountrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/account/postgres"
	productrepo "github.com/corray333/backend-labs/shop/internal/dal/repositories/product/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/corray333/backend-labs/shop/internal/service/models/user"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Catalog is the product API consumed by the transport layer and the order service.
type Catalog interface {
	CreateProduct(ctx context.Context, clientID string, p product.Product) (*product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	ListProducts(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
	// IsProductAvailable is an advisory check; order placement re-checks stock under lock.
	IsProductAvailable(ctx context.Context, id string, qty int64) (bool, error)
	// Invalidate drops cached copies of the given products.
	Invalidate(ctx context.Context, ids ...string) error
}

type productRepository interface {
	Insert(ctx context.Context, p product.Product) error
	Get(ctx context.Context, id string) (*product.Product, error)
	Query(ctx context.Context, filter *product.QueryProductsModel) ([]product.Product, error)
}

type accountRepository interface {
	Exists(ctx context.Context, kind user.Kind, id string) (bool, error)
}

// ProductService serves the catalog straight from the store.
type ProductService struct {
	products productRepository
	accounts accountRepository
	tracer   trace.Tracer

	now   func() time.Time
	newID func() string
}

type option func(*ProductService)

// MustNewProductService creates a new ProductService.
func MustNewProductService(opts ...option) *ProductService {
	s := &ProductService{
		tracer: otel.Tracer("productsvc"),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.products == nil || s.accounts == nil {
		panic("productsvc: repositories are required")
	}

	return s
}

// WithPostgresClient binds the service to the product and account tables.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *ProductService) {
		s.products = productrepo.NewPostgresProductRepository(pgClient.Pool())
		s.accounts = accountrepo.NewPostgresAccountRepository(pgClient.Pool())
	}
}

func withRepositories(products productRepository, accounts accountRepository) option {
	return func(s *ProductService) {
		s.products = products
		s.accounts = accounts
	}
}

// CreateProduct adds a product owned by the client. The id is generated when empty.
// A blank category is dropped and image references are trimmed.
func (s *ProductService) CreateProduct(
	ctx context.Context,
	clientID string,
	p product.Product,
) (*product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	p.Name = strings.TrimSpace(p.Name)

	switch {
	case p.Name == "":
		return nil, apperr.NewValidationError("name", "is required")
	case p.Price < 0:
		return nil, apperr.NewValidationError("price", "must not be negative")
	case p.Stock < 0:
		return nil, apperr.NewValidationError("stock", "must not be negative")
	}

	if p.CategoryID != nil {
		if c := strings.TrimSpace(*p.CategoryID); c != "" {
			p.CategoryID = &c
		} else {
			p.CategoryID = nil
		}
	}

	images := make([]string, 0, len(p.Images))
	for i, img := range p.Images {
		img = strings.TrimSpace(img)
		if img == "" {
			return nil, apperr.NewValidationError(fmt.Sprintf("images[%d]", i), "must not be empty")
		}
		images = append(images, img)
	}
	p.Images = images

	ok, err := s.accounts.Exists(ctx, user.KindClient, clientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("client %s: %w", clientID, apperr.ErrNotFound)
	}

	if p.ID == "" {
		p.ID = s.newID()
	}
	p.ClientID = clientID
	p.CreatedAt = s.now().UTC()
	p.UpdatedAt = p.CreatedAt

	if err := s.products.Insert(ctx, p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProduct")
	defer span.End()

	return s.products.Get(ctx, id)
}

// ListProducts returns a page of products. The page size defaults to DefaultPageSize
// and is capped at MaxPageSize.
func (s *ProductService) ListProducts(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	f := *filter
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultPageSize
	case f.Limit > MaxPageSize:
		f.Limit = MaxPageSize
	}
	f.Offset = max(f.Offset, 0)

	return s.products.Query(ctx, &f)
}

func (s *ProductService) IsProductAvailable(ctx context.Context, id string, qty int64) (bool, error) {
	return isAvailable(ctx, s, id, qty)
}

// Invalidate is a no-op: nothing is cached.
func (s *ProductService) Invalidate(context.Context, ...string) error {
	return nil
}

func isAvailable(ctx context.Context, c Catalog, id string, qty int64) (bool, error) {
	p, err := c.GetProduct(ctx, id)
	if err != nil {
		return false, err
	}

	return p.Stock >= qty, nil
}
