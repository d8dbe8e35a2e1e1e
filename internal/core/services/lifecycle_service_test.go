package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/SscSPs/secure_pay/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testAdmin = domain.Principal{AccountID: "admin-1", Role: domain.RoleAdmin}

var statusClock = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func fixedStatusClock() time.Time { return statusClock }

func pendingAccount(id string, role domain.Role) *domain.Account {
	acc := activeAccount(id, "0170000000"+id, role, 0)
	acc.Status = domain.StatusPending
	return acc
}

func TestSetStatus_ActivationCreditsRoleBonus(t *testing.T) {
	for _, tt := range []struct {
		role  domain.Role
		bonus int64
	}{
		{domain.RoleAgent, 10000},
		{domain.RoleUser, 40},
	} {
		t.Run(string(tt.role), func(t *testing.T) {
			repo := new(MockAccountRepository)
			rec := &outcomeRecorder{}
			svc := services.NewLifecycleService(repo, rec, services.RetryPolicy{MaxAttempts: 1}, services.WithLifecycleClock(fixedStatusClock))
			ctx := context.Background()

			acc := pendingAccount("1", tt.role)
			activated := *acc
			activated.Status = domain.StatusActive
			activated.Balance = tt.bonus

			repo.On("FindAccountByID", ctx, "1").Return(acc, nil).Once()
			repo.On("ConditionalUpdate", ctx, "1",
				domain.AccountCondition{Status: domain.StatusPending},
				domain.AccountUpdate{Status: domain.StatusActive, BalanceDelta: tt.bonus, UpdatedBy: testAdmin.AccountID, At: statusClock},
				mock.MatchedBy(func(e *domain.LedgerEvent) bool {
					return e.Type == domain.EventAccountActivated && e.OccurredAt.Equal(statusClock)
				}),
			).Return(&activated, true, nil).Once()

			got, err := svc.SetStatus(ctx, testAdmin, "1", "active")
			require.NoError(t, err)
			assert.Equal(t, tt.bonus, got.Balance)
			assert.Equal(t, []string{"set_status:success"}, rec.all())
			repo.AssertExpectations(t)
		})
	}
}

func TestSetStatus_ReactivationFromBlockedHasNoBonus(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := services.NewLifecycleService(repo, nil, services.RetryPolicy{MaxAttempts: 1}, services.WithLifecycleClock(fixedStatusClock))
	ctx := context.Background()

	acc := activeAccount("1", "01700000001", domain.RoleUser, 40)
	acc.Status = domain.StatusBlocked
	repo.On("FindAccountByID", ctx, "1").Return(acc, nil).Once()
	repo.On("ConditionalUpdate", ctx, "1",
		domain.AccountCondition{Status: domain.StatusBlocked},
		domain.AccountUpdate{Status: domain.StatusActive, UpdatedBy: testAdmin.AccountID, At: statusClock},
		mock.MatchedBy(func(e *domain.LedgerEvent) bool { return e.Type == domain.EventAccountStatusChanged }),
	).Return(activeAccount("1", "01700000001", domain.RoleUser, 40), true, nil).Once()

	got, err := svc.SetStatus(ctx, testAdmin, "1", "ACTIVE")
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.Balance)
}

func TestSetStatus_LostRaceRereadsAndSucceedsWithoutSecondBonus(t *testing.T) {
	repo := new(MockAccountRepository)
	svc := services.NewLifecycleService(repo, nil, services.RetryPolicy{MaxAttempts: 1})
	ctx := context.Background()

	activated := activeAccount("1", "01700000001", domain.RoleAgent, 10000)
	repo.On("FindAccountByID", ctx, "1").Return(pendingAccount("1", domain.RoleAgent), nil).Once()
	repo.On("ConditionalUpdate", ctx, "1", mock.Anything, mock.Anything, mock.Anything).Return(nil, false, nil).Once()
	repo.On("FindAccountByID", ctx, "1").Return(activated, nil).Once()

	got, err := svc.SetStatus(ctx, testAdmin, "1", "active")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.Balance)
	repo.AssertNumberOfCalls(t, "ConditionalUpdate", 1)
}

func TestSetStatus_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin actor", func(t *testing.T) {
		svc := services.NewLifecycleService(new(MockAccountRepository), nil, services.DefaultRetryPolicy)
		_, err := svc.SetStatus(ctx, domain.Principal{AccountID: "u", Role: domain.RoleUser}, "1", "active")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("unknown or pending status", func(t *testing.T) {
		svc := services.NewLifecycleService(new(MockAccountRepository), nil, services.DefaultRetryPolicy)
		_, err := svc.SetStatus(ctx, testAdmin, "1", "frozen")
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
		_, err = svc.SetStatus(ctx, testAdmin, "1", "pending")
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("missing account", func(t *testing.T) {
		repo := new(MockAccountRepository)
		repo.On("FindAccountByID", ctx, "nope").Return(nil, apperrors.ErrNotFound)
		svc := services.NewLifecycleService(repo, nil, services.RetryPolicy{MaxAttempts: 1})
		_, err := svc.SetStatus(ctx, testAdmin, "nope", "blocked")
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
	})

	t.Run("admin target", func(t *testing.T) {
		repo := new(MockAccountRepository)
		repo.On("FindAccountByID", ctx, "root").Return(activeAccount("root", "01800000000", domain.RoleAdmin, 0), nil)
		svc := services.NewLifecycleService(repo, nil, services.RetryPolicy{MaxAttempts: 1})
		_, err := svc.SetStatus(ctx, testAdmin, "root", "blocked")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestSetStatus_SameStatusIsNoOp(t *testing.T) {
	repo := new(MockAccountRepository)
	ctx := context.Background()
	acc := activeAccount("1", "01700000001", domain.RoleUser, 40)
	repo.On("FindAccountByID", ctx, "1").Return(acc, nil).Once()
	svc := services.NewLifecycleService(repo, nil, services.RetryPolicy{MaxAttempts: 1})

	got, err := svc.SetStatus(ctx, testAdmin, "1", "active")
	require.NoError(t, err)
	assert.Equal(t, acc, got)
	repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
