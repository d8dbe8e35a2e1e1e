package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
)

// OutboxRepository is the delivery side of the transactional outbox.
type OutboxRepository interface {
	// ClaimOutboxMessages marks up to batchSize due messages as processing and returns them.
	// Messages left in processing for longer than staleAfter are claimed again.
	ClaimOutboxMessages(ctx context.Context, batchSize int, staleAfter time.Duration) ([]domain.OutboxMessage, error)

	// MarkOutboxPublished records successful delivery.
	MarkOutboxPublished(ctx context.Context, id int64) error

	// MarkOutboxFailed returns the message to pending, due again after retryAfter.
	MarkOutboxFailed(ctx context.Context, id int64, retryAfter time.Duration, lastError string) error

	// PruneOutbox deletes published messages older than before and returns how many went.
	PruneOutbox(ctx context.Context, before time.Time) (int64, error)
}
