package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
)

// OperationSetStatus labels status changes in metrics.
const OperationSetStatus = "set_status"

// maxStatusAttempts bounds the compare-and-set loop under contention.
const maxStatusAttempts = 5

type lifecycleService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	recorder    portssvc.OperationRecorder
	retry       RetryPolicy
	now         func() time.Time
}

// LifecycleOption customizes NewLifecycleService.
type LifecycleOption func(*lifecycleService)

// WithLifecycleClock replaces time.Now for audit stamps and event times.
func WithLifecycleClock(now func() time.Time) LifecycleOption {
	return func(s *lifecycleService) { s.now = now }
}

// NewLifecycleService creates the status transition service.
func NewLifecycleService(repo portsrepo.AccountRepositoryFacade, recorder portssvc.OperationRecorder, retry RetryPolicy, opts ...LifecycleOption) portssvc.LifecycleSvcFacade {
	if recorder == nil {
		recorder = portssvc.NoopRecorder{}
	}
	s := &lifecycleService{
		accountRepo: repo,
		recorder:    recorder,
		retry:       retry,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.LifecycleSvcFacade = (*lifecycleService)(nil)

// SetStatus moves an account to active or blocked. The pending -> active edge credits the
// role's activation bonus in the same conditional write that flips the status, guarded on
// the status observed beforehand, so concurrent activations grant the bonus once.
func (s *lifecycleService) SetStatus(ctx context.Context, actor domain.Principal, accountID string, status string) (*domain.Account, error) {
	if !actor.IsAdmin() {
		s.LogWarn(ctx, "Status change denied", slog.String("actor_id", actor.AccountID))
		return nil, apperrors.ErrForbidden
	}
	target, ok := domain.ParseStatus(status)
	if !ok || target == domain.StatusPending {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
	}

	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		current, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) (*domain.Account, error) {
			return s.accountRepo.FindAccountByID(ctx, accountID)
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrAccountNotFound
			}
			return nil, err
		}
		if current.Role == domain.RoleAdmin {
			return nil, apperrors.ErrForbidden
		}
		if current.Status == target {
			s.recorder.RecordOperation(OperationSetStatus, portssvc.OutcomeReplayed, 0)
			return current, nil
		}
		if !current.Status.CanTransitionTo(target) {
			return nil, apperrors.ErrInvalidStatus
		}

		now := s.now().UTC()
		upd := domain.AccountUpdate{Status: target, UpdatedBy: actor.AccountID, At: now}
		var event domain.LedgerEvent
		if domain.IsActivation(current.Status, target) {
			upd.BalanceDelta = domain.ActivationBonus(current.Role)
			event = newEvent(domain.EventAccountActivated, accountID, now, map[string]any{
				"role":  string(current.Role),
				"bonus": upd.BalanceDelta,
			})
		} else {
			event = newEvent(domain.EventAccountStatusChanged, accountID, now, map[string]any{
				"from": string(current.Status),
				"to":   string(target),
			})
		}

		// Safe to retry: once applied, the guard on the old status no longer matches.
		type result struct {
			account *domain.Account
			applied bool
		}
		res, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) (result, error) {
			acc, applied, err := s.accountRepo.ConditionalUpdate(ctx, accountID,
				domain.AccountCondition{Status: current.Status}, upd, &event)
			return result{acc, applied}, err
		})
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrAccountNotFound
			}
			s.LogError(ctx, err, "Failed to update account status", slog.String("account_id", accountID))
			s.recorder.RecordOperation(OperationSetStatus, portssvc.OutcomeError, 0)
			return nil, err
		}
		if res.applied {
			s.LogInfo(ctx, "Account status changed",
				slog.String("account_id", accountID),
				slog.String("from", string(current.Status)),
				slog.String("to", string(target)),
				slog.Int64("bonus", upd.BalanceDelta))
			s.recorder.RecordOperation(OperationSetStatus, portssvc.OutcomeSuccess, upd.BalanceDelta)
			return res.account, nil
		}
		s.LogDebug(ctx, "Status changed concurrently, re-reading", slog.String("account_id", accountID), slog.Int("attempt", attempt))
	}
	return nil, apperrors.Unavailable("account status kept changing", errors.New("compare-and-set attempts exhausted"))
}
