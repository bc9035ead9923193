package postgresrepo

import (
	"context"
	"fmt"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/product"
	"github.com/jackc/pgx/v5"
)

// ProductDal represents product data access layer model.
type ProductDal struct {
	Id          string    `db:"id"`
	ClientId    string    `db:"client_id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CategoryId  *string   `db:"category_id"`
	Images      []string  `db:"images"`
	Price       int64     `db:"price"`
	Stock       int64     `db:"stock"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ToModel converts ProductDal to service layer Product model.
func (p *ProductDal) ToModel() product.Product {
	return product.Product{
		ID:          p.Id,
		ClientID:    p.ClientId,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryId,
		Images:      p.Images,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

var productColumns = []string{
	"id", "client_id", "name", "description", "category_id", "images", "price", "stock", "created_at", "updated_at",
}

// PostgresProductRepository represents a Postgres product repository.
type PostgresProductRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

// NewPostgresProductRepository creates a new Postgres product repository.
func NewPostgresProductRepository(conn postgres.GenericConn) *PostgresProductRepository {
	return &PostgresProductRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// LockForOrder locks the rows of the given products with FOR UPDATE SKIP LOCKED.
// Ids are deduplicated and sorted so every caller attempts locks in the same order.
// Rows that do not exist or are locked by another transaction are absent from the result.
func (r *PostgresProductRepository) LockForOrder(
	ctx context.Context,
	ids []string,
) ([]product.StockSnapshot, error) {
	ids = distinctSorted(ids)
	if len(ids) == 0 {
		return []product.StockSnapshot{}, nil
	}

	sql, args, err := r.sb.
		Select("id", "stock", "price").
		From("products").
		Where(sq.Eq{"id": ids}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	snapshots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (product.StockSnapshot, error) {
		var s product.StockSnapshot
		err := row.Scan(&s.ID, &s.Stock, &s.Price)

		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked products: %w", err)
	}

	return snapshots, nil
}

// DecrementStock subtracts qty from the stock of the product.
// The stock >= qty guard keeps the row non-negative even without a prior lock.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, id string, qty int64) error {
	sql, args, err := r.sb.
		Update("products").
		Set("stock", sq.Expr("stock - ?", qty)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Where(sq.GtOrEq{"stock": qty}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build decrement query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, apperr.ErrInsufficientStock)
	}

	return nil
}

// Insert adds a new product. Nil images are stored as an empty array.
func (r *PostgresProductRepository) Insert(ctx context.Context, p product.Product) error {
	images := p.Images
	if images == nil {
		images = []string{}
	}

	sql, args, err := r.sb.
		Insert("products").
		Columns(productColumns...).
		Values(p.ID, p.ClientID, p.Name, p.Description, p.CategoryID, images, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		if postgres.HasCode(err, postgres.CodeUniqueViolation) {
			return fmt.Errorf("product %s: %w", p.ID, apperr.ErrAlreadyExists)
		}
		if postgres.HasCode(err, postgres.CodeForeignKeyViolation) {
			return fmt.Errorf("client %s: %w", p.ClientID, apperr.ErrNotFound)
		}

		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// Get returns a single product by id.
func (r *PostgresProductRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	products, err := r.Query(ctx, &product.QueryProductsModel{Ids: []string{id}, Limit: 1})
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("product %s: %w", id, apperr.ErrNotFound)
	}

	return &products[0], nil
}

// Query retrieves products based on filter criteria.
func (r *PostgresProductRepository) Query(
	ctx context.Context,
	filter *product.QueryProductsModel,
) ([]product.Product, error) {
	query := r.sb.
		Select(productColumns...).
		From("products").
		OrderBy("created_at DESC", "id ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.ClientIds) > 0 {
		query = query.Where(sq.Eq{"client_id": filter.ClientIds})
	}

	if len(filter.CategoryIds) > 0 {
		query = query.Where(sq.Eq{"category_id": filter.CategoryIds})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByName[ProductDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	result := make([]product.Product, 0, len(dals))
	for i := range dals {
		result = append(result, dals[i].ToModel())
	}

	return result, nil
}

func distinctSorted(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)

	return slices.Compact(out)
}
