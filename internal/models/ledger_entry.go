package models

import (
	"database/sql"
	"time"
)

// LedgerEntry is the persisted form of a ledger entry row.
type LedgerEntry struct {
	EntryID        string         `db:"entry_id"`
	Kind           string         `db:"kind"`
	AccountID      string         `db:"account_id"`
	CounterpartyID sql.NullString `db:"counterparty_id"`
	Amount         int64          `db:"amount"`
	BalanceAfter   int64          `db:"balance_after"`
	IdempotencyKey string         `db:"idempotency_key"`
	CreatedAt      time.Time      `db:"created_at"`
}
