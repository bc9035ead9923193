package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
	"github.com/corray333/backend-labs/shop/internal/service/models/review"
	"github.com/jackc/pgx/v5"
)

// ReviewDal represents review data access layer model.
type ReviewDal struct {
	Id        string    `db:"id"`
	UserId    string    `db:"user_id"`
	UserName  string    `db:"user_name"`
	ProductId string    `db:"product_id"`
	Rating    int       `db:"rating"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (d *ReviewDal) ToModel() review.Review {
	return review.Review{
		ID:        d.Id,
		UserID:    d.UserId,
		UserName:  d.UserName,
		ProductID: d.ProductId,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type PostgresReviewRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresReviewRepository(conn postgres.GenericConn) *PostgresReviewRepository {
	return &PostgresReviewRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresReviewRepository) Insert(ctx context.Context, rv review.Review) error {
	sql, args, err := r.sb.
		Insert("reviews").
		Columns("id", "user_id", "product_id", "rating", "comment", "created_at", "updated_at").
		Values(rv.ID, rv.UserID, rv.ProductID, rv.Rating, rv.Comment, rv.CreatedAt, rv.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		if postgres.HasCode(err, postgres.CodeForeignKeyViolation) {
			return fmt.Errorf("product %s: %w", rv.ProductID, apperr.ErrNotFound)
		}

		return fmt.Errorf("failed to insert review: %w", err)
	}

	return nil
}

func (r *PostgresReviewRepository) Get(ctx context.Context, id string) (*review.Review, error) {
	reviews, err := r.query(ctx, sq.Eq{"r.id": id})
	if err != nil {
		return nil, err
	}

	if len(reviews) == 0 {
		return nil, fmt.Errorf("review %s: %w", id, apperr.ErrNotFound)
	}

	return &reviews[0], nil
}

func (r *PostgresReviewRepository) QueryByUser(ctx context.Context, userID string) ([]review.Review, error) {
	return r.query(ctx, sq.Eq{"r.user_id": userID})
}

func (r *PostgresReviewRepository) Update(ctx context.Context, rv review.Review) error {
	sql, args, err := r.sb.
		Update("reviews").
		Set("rating", rv.Rating).
		Set("comment", rv.Comment).
		Set("updated_at", rv.UpdatedAt).
		Where(sq.Eq{"id": rv.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", rv.ID, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresReviewRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("reviews").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", id, apperr.ErrNotFound)
	}

	return nil
}

func (r *PostgresReviewRepository) query(ctx context.Context, where sq.Sqlizer) ([]review.Review, error) {
	sql, args, err := r.sb.
		Select(
			"r.id",
			"r.user_id",
			"a.name AS user_name",
			"r.product_id",
			"r.rating",
			"r.comment",
			"r.created_at",
			"r.updated_at",
		).
		From("reviews r").
		Join("accounts a ON a.id = r.user_id").
		Where(where).
		OrderBy("r.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}

	dals, err := pgx.CollectRows(rows, pgx.RowToStructByName[ReviewDal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan reviews: %w", err)
	}

	result := make([]review.Review, 0, len(dals))
	for i := range dals {
		result = append(result, dals[i].ToModel())
	}

	return result, nil
}
