package repositories

import (
	"context"

	"github.com/SscSPs/secure_pay/internal/core/domain"
)

// LedgerWriter applies balance-moving operations as single store transactions.
type LedgerWriter interface {
	// ApplyTransfer debits entry.AccountID only if it is active and its balance covers
	// entry.Amount, credits the active account entry.CounterpartyID, records the entry
	// and appends event, all or nothing.
	//
	// Errors: apperrors.ErrPredicateFailed when the sender's debit predicate fails,
	// apperrors.ErrRecipientNotFound when the credit target is missing or not active,
	// apperrors.ErrDuplicate when the idempotency key was already used by the sender.
	ApplyTransfer(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error)

	// ApplyCashOut conditionally debits entry.AccountID and records the entry.
	// Errors mirror ApplyTransfer minus the recipient case.
	ApplyCashOut(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error)
}

// LedgerReader reads committed ledger entries.
type LedgerReader interface {
	// FindEntryByIdempotencyKey returns the entry an account created under key.
	FindEntryByIdempotencyKey(ctx context.Context, accountID string, key string) (*domain.LedgerEntry, error)

	// ListEntriesByAccount returns entries where the account is either side, newest first.
	ListEntriesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error)
}

// LedgerRepositoryFacade combines ledger entry reads and writes.
type LedgerRepositoryFacade interface {
	LedgerWriter
	LedgerReader
}
