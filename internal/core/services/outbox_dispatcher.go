package services

import (
	"context"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
)

const (
	defaultOutboxBatchSize    = 50
	defaultOutboxPollInterval = time.Second
	defaultStaleProcessing    = 2 * time.Minute
	maxOutboxRetryDelay       = 300 * time.Second
)

// OutboxDispatcher drains the transactional outbox onto the event bus.
type OutboxDispatcher struct {
	repo         portsrepo.OutboxRepository
	publisher    portssvc.EventPublisher
	logger       *slog.Logger
	batchSize    int
	pollInterval time.Duration
	staleAfter   time.Duration
}

// NewOutboxDispatcher creates a dispatcher. Non-positive sizes fall back to defaults.
func NewOutboxDispatcher(repo portsrepo.OutboxRepository, publisher portssvc.EventPublisher, logger *slog.Logger, batchSize int, pollInterval time.Duration) *OutboxDispatcher {
	if batchSize <= 0 {
		batchSize = defaultOutboxBatchSize
	}
	if pollInterval <= 0 {
		pollInterval = defaultOutboxPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxDispatcher{
		repo:         repo,
		publisher:    publisher,
		logger:       logger.With(slog.String("component", "outbox_dispatcher")),
		batchSize:    batchSize,
		pollInterval: pollInterval,
		staleAfter:   defaultStaleProcessing,
	}
}

// Run polls until ctx is cancelled, then closes the publisher.
func (d *OutboxDispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	defer func() {
		if err := d.publisher.Close(); err != nil {
			d.logger.Warn("Failed to close event publisher", slog.String("error", err.Error()))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.FlushOnce(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("Outbox flush failed", slog.String("error", err.Error()))
			}
		}
	}
}

// FlushOnce claims one batch and publishes it. It returns how many messages were published.
func (d *OutboxDispatcher) FlushOnce(ctx context.Context) (int, error) {
	messages, err := d.repo.ClaimOutboxMessages(ctx, d.batchSize, d.staleAfter)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, msg := range messages {
		if err := d.publisher.Publish(ctx, msg); err != nil {
			delay := retryDelay(msg.Attempts)
			d.logger.Warn("Failed to publish outbox message",
				slog.Int64("outbox_id", msg.ID),
				slog.String("routing_key", msg.RoutingKey),
				slog.Int("attempts", msg.Attempts),
				slog.Duration("retry_after", delay),
				slog.String("error", err.Error()))
			if merr := d.repo.MarkOutboxFailed(ctx, msg.ID, delay, err.Error()); merr != nil {
				d.logger.Error("Failed to mark outbox message as failed", slog.Int64("outbox_id", msg.ID), slog.String("error", merr.Error()))
			}
			continue
		}
		if err := d.repo.MarkOutboxPublished(ctx, msg.ID); err != nil {
			d.logger.Error("Failed to mark outbox message as published", slog.Int64("outbox_id", msg.ID), slog.String("error", err.Error()))
			continue
		}
		published++
	}
	return published, nil
}

func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		return time.Second
	}
	delay := time.Duration(1<<min(attempt, 8)) * time.Second
	if delay > maxOutboxRetryDelay {
		return maxOutboxRetryDelay
	}
	return delay
}
