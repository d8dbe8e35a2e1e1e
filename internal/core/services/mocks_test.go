package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) account(args mock.Arguments) (*domain.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return m.account(m.Called(ctx, accountID))
}

func (m *MockAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return m.account(m.Called(ctx, email))
}

func (m *MockAccountRepository) FindAccountByMobile(ctx context.Context, mobileNumber string) (*domain.Account, error) {
	return m.account(m.Called(ctx, mobileNumber))
}

func (m *MockAccountRepository) FindAccountByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	return m.account(m.Called(ctx, identifier))
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, account domain.Account, event domain.LedgerEvent) error {
	return m.Called(ctx, account, event).Error(0)
}

func (m *MockAccountRepository) ConditionalUpdate(ctx context.Context, accountID string, cond domain.AccountCondition, upd domain.AccountUpdate, event *domain.LedgerEvent) (*domain.Account, bool, error) {
	args := m.Called(ctx, accountID, cond, upd, event)
	var acc *domain.Account
	if args.Get(0) != nil {
		acc = args.Get(0).(*domain.Account)
	}
	return acc, args.Bool(1), args.Error(2)
}

// MockLedgerRepository is a mock type for the LedgerRepositoryFacade interface
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) entry(args mock.Arguments) (*domain.LedgerEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ApplyTransfer(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error) {
	return m.entry(m.Called(ctx, entry, event))
}

func (m *MockLedgerRepository) ApplyCashOut(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error) {
	return m.entry(m.Called(ctx, entry, event))
}

func (m *MockLedgerRepository) FindEntryByIdempotencyKey(ctx context.Context, accountID string, key string) (*domain.LedgerEntry, error) {
	return m.entry(m.Called(ctx, accountID, key))
}

func (m *MockLedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

// MockOutboxRepository is a mock type for the OutboxRepository interface
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) ClaimOutboxMessages(ctx context.Context, batchSize int, staleAfter time.Duration) ([]domain.OutboxMessage, error) {
	args := m.Called(ctx, batchSize, staleAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OutboxMessage), args.Error(1)
}

func (m *MockOutboxRepository) MarkOutboxPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepository) MarkOutboxFailed(ctx context.Context, id int64, retryAfter time.Duration, lastError string) error {
	return m.Called(ctx, id, retryAfter, lastError).Error(0)
}

func (m *MockOutboxRepository) PruneOutbox(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// plainHasher keeps tests fast; it is not a hash.
type plainHasher struct{}

func (plainHasher) Hash(secret string) (string, error) { return "h:" + secret, nil }
func (plainHasher) Verify(secret, hash string) bool   { return hash == "h:"+secret }

// outcomeRecorder collects metric observations.
type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) RecordOperation(operation string, outcome string, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, operation+":"+outcome)
}

func (r *outcomeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.outcomes...)
}

func activeAccount(id, mobile string, role domain.Role, balance int64) *domain.Account {
	return &domain.Account{
		AccountID:    id,
		Name:         "Account " + id,
		Email:        id + "@example.com",
		MobileNumber: mobile,
		Role:         role,
		Status:       domain.StatusActive,
		Balance:      balance,
	}
}
