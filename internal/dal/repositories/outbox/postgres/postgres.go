package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/corray333/backend-labs/shop/internal/dal/postgres"
	"github.com/corray333/backend-labs/shop/internal/service/models/outbox"
	"github.com/jackc/pgx/v5"
)

// Column order matches the fields of outbox.OutboxMessage.
var outboxColumns = []string{
	"id",
	"exchange_name",
	"routing_key",
	"message_key",
	"payload",
	"content_type",
	"retry_count",
	"max_retries",
	"last_error",
	"created_at",
	"updated_at",
	"next_retry_at",
}

type PostgresOutboxRepository struct {
	conn postgres.GenericConn
	sb   sq.StatementBuilderType
}

func NewPostgresOutboxRepository(conn postgres.GenericConn) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresOutboxRepository) Insert(ctx context.Context, msg outbox.OutboxMessage) error {
	sql, args, err := r.sb.
		Insert("outbox").
		Columns(outboxColumns[1:]...).
		Values(
			msg.ExchangeName,
			msg.RoutingKey,
			msg.MessageKey,
			msg.Payload,
			msg.ContentType,
			msg.RetryCount,
			msg.MaxRetries,
			msg.LastError,
			msg.CreatedAt,
			msg.UpdatedAt,
			msg.NextRetryAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}

func (r *PostgresOutboxRepository) GetPending(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]outbox.OutboxMessage, error) {
	sql, args, err := r.sb.
		Select(outboxColumns...).
		From("outbox").
		Where(sq.LtOrEq{"next_retry_at": now}).
		Where("retry_count < max_retries").
		OrderBy("next_retry_at ASC", "id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, pgx.RowToStructByPos[outbox.OutboxMessage])
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox messages: %w", err)
	}

	return messages, nil
}

func (r *PostgresOutboxRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("outbox").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to delete outbox message: %w", err)
	}

	return nil
}

func (r *PostgresOutboxRepository) MarkFailed(
	ctx context.Context,
	id int64,
	retryCount int,
	lastError string,
	nextRetryAt time.Time,
) error {
	sql, args, err := r.sb.
		Update("outbox").
		Set("retry_count", retryCount).
		Set("last_error", lastError).
		Set("next_retry_at", nextRetryAt).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to update outbox message: %w", err)
	}

	return nil
}
