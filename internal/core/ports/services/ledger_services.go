package services

import (
	"context"

	"github.com/SscSPs/secure_pay/internal/core/domain"
)

// LedgerReaderSvc defines read-only ledger operations.
type LedgerReaderSvc interface {
	GetBalance(ctx context.Context, accountID string) (int64, error)
	ListEntries(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error)
}

// LedgerWriterSvc defines the balance-moving operations.
type LedgerWriterSvc interface {
	// Transfer moves amount from senderID to the account owning recipientMobile.
	// An empty idempotencyKey is replaced by a generated one.
	Transfer(ctx context.Context, senderID string, recipientMobile string, amount int64, idempotencyKey string) (*domain.LedgerEntry, error)
	// CashOut withdraws amount from accountID.
	CashOut(ctx context.Context, accountID string, amount int64, idempotencyKey string) (*domain.LedgerEntry, error)
}

// LedgerSvcFacade combines ledger reads and writes.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
