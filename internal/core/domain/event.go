package domain

import "time"

// EventType doubles as the routing key on the event bus.
type EventType string

const (
	EventAccountRegistered    EventType = "account.registered"
	EventAccountActivated     EventType = "account.activated"
	EventAccountStatusChanged EventType = "account.status_changed"
	EventTransferCompleted    EventType = "ledger.transfer.completed"
	EventCashOutCompleted     EventType = "ledger.cashout.completed"
)

// LedgerEvent is appended to the outbox in the same transaction as the change it reports.
type LedgerEvent struct {
	EventID    string         `json:"eventID"`
	Type       EventType      `json:"type"`
	AccountID  string         `json:"accountID"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// OutboxStatus tracks delivery of an outbox message.
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxPublished  OutboxStatus = "published"
)

// OutboxMessage is a serialized LedgerEvent awaiting publication.
type OutboxMessage struct {
	ID         int64
	EventID    string
	RoutingKey string
	Payload    []byte
	Attempts   int
	CreatedAt  time.Time
}
