package services

import (
	"context"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/SscSPs/secure_pay/internal/dto"
)

// AccountReaderSvc defines account read operations.
type AccountReaderSvc interface {
	// GetAccount returns the account visible to its owner.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	// ListAccounts returns non-admin accounts, newest first. Admin only.
	ListAccounts(ctx context.Context, actor domain.Principal, limit int, offset int) ([]domain.Account, error)
	// SearchAccountsByName is a case-insensitive literal substring match on name. Admin only.
	SearchAccountsByName(ctx context.Context, actor domain.Principal, name string, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines account creation.
type AccountWriterSvc interface {
	// Register creates a pending account with zero balance.
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error)
	// CreateAdmin creates an active administrator without bonus.
	CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (*domain.Account, error)
}

// AccountSvcFacade combines account reads and writes.
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}

// LifecycleSvcFacade owns status transitions and the one-time activation bonus.
type LifecycleSvcFacade interface {
	// SetStatus moves accountID to status. Only administrators may call it and
	// administrator accounts cannot be targeted.
	SetStatus(ctx context.Context, actor domain.Principal, accountID string, status string) (*domain.Account, error)
}
