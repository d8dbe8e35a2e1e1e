package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	"github.com/SscSPs/secure_pay/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxOutboxErrorLen = 2000

// PgxOutboxRepository is the delivery side of the event outbox.
type PgxOutboxRepository struct {
	BaseRepository
}

func newPgxOutboxRepository(pool *pgxpool.Pool) *PgxOutboxRepository {
	return &PgxOutboxRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OutboxRepository = (*PgxOutboxRepository)(nil)

// enqueueEventTx appends event to the outbox inside tx.
func enqueueEventTx(ctx context.Context, tx pgx.Tx, event domain.LedgerEvent) error {
	m, err := mapping.ToModelOutboxMessage(event)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO event_outbox (event_id, routing_key, payload, status, next_attempt_at, created_at)
		VALUES ($1, $2, $3::jsonb, $4, $5, $6)`,
		m.EventID, m.RoutingKey, string(m.Payload), m.Status, m.NextAttemptAt, m.CreatedAt,
	)
	if err != nil {
		return translateError(err, "failed to enqueue outbox event")
	}
	return nil
}

// ClaimOutboxMessages marks due messages as processing using SKIP LOCKED so that
// several dispatchers can share the table.
func (r *PgxOutboxRepository) ClaimOutboxMessages(ctx context.Context, batchSize int, staleAfter time.Duration) ([]domain.OutboxMessage, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	if staleAfter <= 0 {
		staleAfter = 2 * time.Minute
	}

	rows, err := r.Pool.Query(ctx, `
		WITH candidates AS (
			SELECT id
			FROM event_outbox
			WHERE (status = 'pending' AND next_attempt_at <= NOW())
			   OR (status = 'processing' AND processing_started_at < NOW() - ($2 * INTERVAL '1 second'))
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE event_outbox AS o
		SET status = 'processing',
		    processing_started_at = NOW(),
		    attempts = o.attempts + 1
		FROM candidates
		WHERE o.id = candidates.id
		RETURNING o.id, o.event_id, o.routing_key, o.payload::text, o.attempts, o.created_at`,
		batchSize, int(staleAfter.Seconds()),
	)
	if err != nil {
		return nil, translateError(err, "failed to claim outbox messages")
	}
	defer rows.Close()

	messages := make([]domain.OutboxMessage, 0, batchSize)
	for rows.Next() {
		var (
			msg     domain.OutboxMessage
			payload string
		)
		if err := rows.Scan(&msg.ID, &msg.EventID, &msg.RoutingKey, &payload, &msg.Attempts, &msg.CreatedAt); err != nil {
			return nil, translateError(err, "failed to scan outbox message")
		}
		msg.Payload = []byte(payload)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to read outbox messages")
	}
	return messages, nil
}

// MarkOutboxPublished records successful delivery.
func (r *PgxOutboxRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	_, err := r.Pool.Exec(ctx, `
		UPDATE event_outbox
		SET status = 'published', published_at = NOW(), processing_started_at = NULL, last_error = NULL
		WHERE id = $1`, id)
	return translateError(err, "failed to mark outbox message published")
}

// MarkOutboxFailed returns the message to pending with a delayed next attempt.
func (r *PgxOutboxRepository) MarkOutboxFailed(ctx context.Context, id int64, retryAfter time.Duration, lastError string) error {
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	if len(lastError) > maxOutboxErrorLen {
		lastError = lastError[:maxOutboxErrorLen]
	}
	_, err := r.Pool.Exec(ctx, `
		UPDATE event_outbox
		SET status = 'pending',
		    next_attempt_at = NOW() + ($2 * INTERVAL '1 second'),
		    processing_started_at = NULL,
		    last_error = $3
		WHERE id = $1`, id, int(retryAfter.Seconds()), lastError)
	return translateError(err, "failed to mark outbox message failed")
}

// PruneOutbox deletes published messages older than before.
func (r *PgxOutboxRepository) PruneOutbox(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM event_outbox WHERE status = 'published' AND published_at < $1`, before)
	if err != nil {
		return 0, translateError(err, "failed to prune outbox")
	}
	return tag.RowsAffected(), nil
}
