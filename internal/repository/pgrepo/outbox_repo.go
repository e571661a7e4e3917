package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const outboxColumns = `id, created_at, channel, event_type, aggregate_type, aggregate_id, integration, payload,
	status, attempts, next_attempt_at, locked_until, last_error, delivered_at`

type OutboxRepository struct {
	conn uow.DBTX
}

func NewOutboxRepository(conn uow.DBTX) *OutboxRepository {
	return &OutboxRepository{conn: conn}
}

func (r *OutboxRepository) Create(ctx context.Context, args repoargs.CreateOutboxEvent) (*domain.OutboxEvent, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO outbox_events (id, channel, event_type, aggregate_type, aggregate_id, integration, payload,
			status, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+outboxColumns,
		args.ID, args.Channel, args.EventType, args.AggregateType, args.AggregateID, args.Integration,
		args.Payload, domain.OutboxStatusPending, args.NextAttemptAt,
	)
	e, err := scanOutboxEvent(row)
	if err != nil {
		return nil, convertErr(err, "create outbox event %s", args.EventType)
	}
	return e, nil
}

// Claim leases due pending events. Rows locked by another claimer are skipped, leased rows are not returned
// until the lease expires. Every claim counts as a delivery attempt.
func (r *OutboxRepository) Claim(ctx context.Context, args repoargs.ClaimOutbox) ([]domain.OutboxEvent, error) {
	filter := ""
	params := []any{args.Now, args.Now.Add(args.Lease), args.Limit}
	if len(args.IDs) > 0 {
		filter = " AND id = ANY($4)"
		params = append(params, args.IDs)
	}
	rows, err := r.conn.Query(ctx,
		`WITH picked AS (
			SELECT id FROM outbox_events
			WHERE status = 'pending' AND next_attempt_at <= $1
				AND (locked_until IS NULL OR locked_until < $1)`+filter+`
			ORDER BY next_attempt_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_events o SET locked_until = $2, attempts = o.attempts + 1
		FROM picked WHERE o.id = picked.id
		RETURNING `+prefixColumns("o.", outboxColumns),
		params...,
	)
	if err != nil {
		return nil, convertErr(err, "claim outbox events")
	}
	defer rows.Close()

	var result []domain.OutboxEvent
	for rows.Next() {
		e, scanErr := scanOutboxEvent(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scan outbox event")
		}
		result = append(result, *e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "claim outbox events")
	}
	return result, nil
}

func (r *OutboxRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE outbox_events SET status = $2, delivered_at = $3, locked_until = NULL, last_error = ''
		WHERE id = $1`, id, domain.OutboxStatusDelivered, at)
	return convertErr(err, "mark outbox event %s delivered", id)
}

func (r *OutboxRepository) MarkRetry(ctx context.Context, args repoargs.OutboxRetry) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE outbox_events SET next_attempt_at = $2, last_error = $3, locked_until = NULL
		WHERE id = $1`, args.ID, args.NextAttemptAt, args.LastError)
	return convertErr(err, "schedule retry of outbox event %s", args.ID)
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastErr string) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE outbox_events SET status = $2, last_error = $3, locked_until = NULL
		WHERE id = $1`, id, domain.OutboxStatusFailed, lastErr)
	return convertErr(err, "mark outbox event %s failed", id)
}

// Requeue puts an event back to pending with a fresh attempt counter, whatever its current status. An event
// leased by a worker at `at` is left alone and domain.ErrConflict is returned.
func (r *OutboxRepository) Requeue(ctx context.Context, id uuid.UUID, at time.Time) (*domain.OutboxEvent, error) {
	row := r.conn.QueryRow(ctx,
		`UPDATE outbox_events
		SET status = $2, attempts = 0, next_attempt_at = $3, locked_until = NULL, delivered_at = NULL
		WHERE id = $1 AND (locked_until IS NULL OR locked_until < $3)
		RETURNING `+outboxColumns, id, domain.OutboxStatusPending, at)
	e, err := scanOutboxEvent(row)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, convertErr(err, "requeue outbox event %s", id)
	}

	var exists bool
	if existsErr := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM outbox_events WHERE id = $1)`, id).Scan(&exists); existsErr != nil {
		return nil, convertErr(existsErr, "requeue outbox event %s", id)
	}
	if !exists {
		return nil, convertErr(err, "requeue outbox event %s", id)
	}
	return nil, fmt.Errorf("[repository/requeue outbox event %s] %w: event is being delivered", id, domain.ErrConflict)
}

func (r *OutboxRepository) GetByStatus(
	ctx context.Context,
	status domain.OutboxStatus,
	limit uint,
) ([]domain.OutboxEvent, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+outboxColumns+` FROM outbox_events WHERE status = $1 ORDER BY created_at DESC LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, convertErr(err, "get %s outbox events", status)
	}
	defer rows.Close()

	var result []domain.OutboxEvent
	for rows.Next() {
		e, scanErr := scanOutboxEvent(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scan outbox event")
		}
		result = append(result, *e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "get %s outbox events", status)
	}
	return result, nil
}

func scanOutboxEvent(row pgx.Row) (*domain.OutboxEvent, error) {
	var e domain.OutboxEvent
	if err := row.Scan(
		&e.ID, &e.CreatedAt, &e.Channel, &e.EventType, &e.AggregateType, &e.AggregateID, &e.Integration,
		&e.Payload, &e.Status, &e.Attempts, &e.NextAttemptAt, &e.LockedUntil, &e.LastError, &e.DeliveredAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &e, nil
}
