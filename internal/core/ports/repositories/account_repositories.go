package repositories

import (
	"context"

	"github.com/SscSPs/secure_pay/internal/core/domain"
)

// AccountReader defines point lookups and listings over accounts.
type AccountReader interface {
	// FindAccountByID retrieves an account by its id. Returns apperrors.ErrNotFound if absent.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByEmail retrieves an account by its unique email.
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)

	// FindAccountByMobile retrieves an account by its unique mobile number.
	FindAccountByMobile(ctx context.Context, mobileNumber string) (*domain.Account, error)

	// FindAccountByIdentifier matches either the email or the mobile number.
	FindAccountByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)

	// ListAccounts returns accounts matching filter, newest first.
	ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines account creation.
type AccountWriter interface {
	// CreateAccount inserts a new account and appends event to the outbox atomically.
	// A clash on email or mobile number returns apperrors.ErrDuplicate.
	CreateAccount(ctx context.Context, account domain.Account, event domain.LedgerEvent) error
}

// AccountMutator is the atomic conditional update primitive.
type AccountMutator interface {
	// ConditionalUpdate applies upd to the account only if cond holds on the stored row
	// at the moment of the write. It returns the updated account and true when applied,
	// and (nil, false, nil) when the account exists but the predicate failed.
	// A missing account returns apperrors.ErrNotFound. When event is non-nil it is
	// appended to the outbox in the same transaction as an applied update.
	ConditionalUpdate(ctx context.Context, accountID string, cond domain.AccountCondition, upd domain.AccountUpdate, event *domain.LedgerEvent) (*domain.Account, bool, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountMutator
}
