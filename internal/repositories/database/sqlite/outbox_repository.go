package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	"github.com/SscSPs/secure_pay/internal/utils/mapping"
)

const maxOutboxErrorLen = 2000

// OutboxRepository is the delivery side of the event outbox.
type OutboxRepository struct {
	BaseRepository
}

func newOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.OutboxRepository = (*OutboxRepository)(nil)

func enqueueEventTx(ctx context.Context, tx *sql.Tx, event domain.LedgerEvent) error {
	m, err := mapping.ToModelOutboxMessage(event)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO event_outbox (event_id, routing_key, payload, status, next_attempt_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.EventID, m.RoutingKey, m.Payload, m.Status, toUnix(m.NextAttemptAt), toUnix(m.CreatedAt),
	)
	if err != nil {
		return translateError(err, "failed to enqueue outbox event")
	}
	return nil
}

func (r *OutboxRepository) ClaimOutboxMessages(ctx context.Context, batchSize int, staleAfter time.Duration) ([]domain.OutboxMessage, error) {
	if batchSize <= 0 {
		batchSize = 50
	}
	if staleAfter <= 0 {
		staleAfter = 2 * time.Minute
	}
	now := time.Now()

	messages := make([]domain.OutboxMessage, 0, batchSize)
	err := r.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_id, routing_key, payload, attempts, created_at
			FROM event_outbox
			WHERE (status = 'pending' AND next_attempt_at <= ?)
			   OR (status = 'processing' AND processing_started_at < ?)
			ORDER BY id
			LIMIT ?`,
			toUnix(now), toUnix(now.Add(-staleAfter)), batchSize,
		)
		if err != nil {
			return translateError(err, "failed to claim outbox messages")
		}
		for rows.Next() {
			var (
				msg       domain.OutboxMessage
				createdAt int64
			)
			if err := rows.Scan(&msg.ID, &msg.EventID, &msg.RoutingKey, &msg.Payload, &msg.Attempts, &createdAt); err != nil {
				rows.Close()
				return translateError(err, "failed to scan outbox message")
			}
			msg.CreatedAt = fromUnix(createdAt)
			msg.Attempts++
			messages = append(messages, msg)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return translateError(err, "failed to read outbox messages")
		}

		for _, msg := range messages {
			if _, err := tx.ExecContext(ctx, `
				UPDATE event_outbox
				SET status = 'processing', processing_started_at = ?, attempts = attempts + 1
				WHERE id = ?`, toUnix(now), msg.ID); err != nil {
				return translateError(err, "failed to claim outbox message")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *OutboxRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE event_outbox
		SET status = 'published', published_at = ?, processing_started_at = NULL, last_error = NULL
		WHERE id = ?`, toUnix(time.Now()), id)
	return translateError(err, "failed to mark outbox message published")
}

func (r *OutboxRepository) MarkOutboxFailed(ctx context.Context, id int64, retryAfter time.Duration, lastError string) error {
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	if len(lastError) > maxOutboxErrorLen {
		lastError = lastError[:maxOutboxErrorLen]
	}
	_, err := r.DB.ExecContext(ctx, `
		UPDATE event_outbox
		SET status = 'pending', next_attempt_at = ?, processing_started_at = NULL, last_error = ?
		WHERE id = ?`, toUnix(time.Now().Add(retryAfter)), lastError, id)
	return translateError(err, "failed to mark outbox message failed")
}

func (r *OutboxRepository) PruneOutbox(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM event_outbox WHERE status = 'published' AND published_at < ?`, toUnix(before))
	if err != nil {
		return 0, translateError(err, "failed to prune outbox")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, translateError(err, "failed to prune outbox")
	}
	return n, nil
}
