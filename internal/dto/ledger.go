package dto

import (
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
)

// SendMoneyRequest moves money to the account owning RecipientMobile.
type SendMoneyRequest struct {
	RecipientMobile string `json:"recipientMobile" binding:"required"`
	Amount          Amount `json:"amount"`
}

// CashOutRequest withdraws money from the caller's account.
type CashOutRequest struct {
	Amount Amount `json:"amount"`
}

// LedgerEntryResponse is the public view of a ledger entry.
type LedgerEntryResponse struct {
	EntryID        string           `json:"entryID"`
	Kind           domain.EntryKind `json:"kind"`
	AccountID      string           `json:"accountID"`
	CounterpartyID string           `json:"counterpartyID,omitempty"`
	Amount         int64            `json:"amount"`
	BalanceAfter   *int64           `json:"balanceAfter,omitempty"`
	IdempotencyKey string           `json:"idempotencyKey,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// ToLedgerEntryResponse converts an entry as seen by viewerID. The initiator's balance
// and idempotency key are shown only to the initiator.
func ToLedgerEntryResponse(e *domain.LedgerEntry, viewerID string) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		EntryID:        e.EntryID,
		Kind:           e.Kind,
		AccountID:      e.AccountID,
		CounterpartyID: e.CounterpartyID,
		Amount:         e.Amount,
		CreatedAt:      e.CreatedAt,
	}
	if e.AccountID == viewerID {
		balance := e.BalanceAfter
		resp.BalanceAfter = &balance
		resp.IdempotencyKey = e.IdempotencyKey
	}
	return resp
}

// ListEntriesResponse wraps a page of ledger entries.
type ListEntriesResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// ToListEntriesResponse converts a slice of entries as seen by viewerID.
func ToListEntriesResponse(entries []domain.LedgerEntry, viewerID string, limit, offset int) ListEntriesResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i], viewerID)
	}
	return ListEntriesResponse{Entries: out, Limit: limit, Offset: offset}
}
