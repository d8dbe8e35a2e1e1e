package domain

import "time"

// EntryKind distinguishes ledger entries.
type EntryKind string

const (
	EntryTransfer EntryKind = "TRANSFER"
	EntryCashOut  EntryKind = "CASH_OUT"
)

// MaxAmount bounds a single operation so that balance arithmetic cannot overflow.
const MaxAmount int64 = 1_000_000_000_000

// LedgerEntry records one committed balance-affecting operation. It is written in the
// same store transaction as the balance mutation it describes.
type LedgerEntry struct {
	EntryID        string    `json:"entryID"`
	Kind           EntryKind `json:"kind"`
	AccountID      string    `json:"accountID"`
	CounterpartyID string    `json:"counterpartyID,omitempty"`
	Amount         int64     `json:"amount"`
	BalanceAfter   int64     `json:"balanceAfter"`
	IdempotencyKey string    `json:"idempotencyKey"`
	CreatedAt      time.Time `json:"createdAt"`
}
