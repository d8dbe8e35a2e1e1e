package models

import (
	"database/sql"
	"time"
)

// OutboxMessage is the persisted form of an outbox row.
type OutboxMessage struct {
	ID            int64          `db:"id"`
	EventID       string         `db:"event_id"`
	RoutingKey    string         `db:"routing_key"`
	Payload       []byte         `db:"payload"`
	Status        string         `db:"status"`
	Attempts      int            `db:"attempts"`
	NextAttemptAt time.Time      `db:"next_attempt_at"`
	LastError     sql.NullString `db:"last_error"`
	CreatedAt     time.Time      `db:"created_at"`
	PublishedAt   sql.NullTime   `db:"published_at"`
	ClaimedAt     sql.NullTime   `db:"processing_started_at"`
}
