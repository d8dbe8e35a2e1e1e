package services

import (
	"context"

	"github.com/SscSPs/secure_pay/internal/core/domain"
)

// EventPublisher delivers outbox messages to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, msg domain.OutboxMessage) error
	Close() error
}

// OperationRecorder observes ledger outcomes for metrics.
type OperationRecorder interface {
	RecordOperation(operation string, outcome string, amount int64)
}

// NoopRecorder discards observations.
type NoopRecorder struct{}

func (NoopRecorder) RecordOperation(string, string, int64) {}

// Outcome labels passed to OperationRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeReplayed = "replayed"
)
