package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/utils"
	"github.com/SscSPs/secure_pay/internal/utils/pagination"
	"github.com/google/uuid"
)

const systemActor = "system"

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	hasher      portssvc.SecretHasher
	retry       RetryPolicy
	now         func() time.Time
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountRetryPolicy overrides DefaultRetryPolicy.
func WithAccountRetryPolicy(p RetryPolicy) AccountServiceOption {
	return func(s *accountService) {
		s.retry = p
	}
}

// WithAccountClock replaces time.Now, mainly for tests.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(repo portsrepo.AccountRepositoryFacade, hasher portssvc.SecretHasher, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo: repo,
		hasher:      hasher,
		retry:       DefaultRetryPolicy,
		now:         time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// identity is the validated, normalized part of a registration.
type identity struct {
	name, email, mobile, pinHash string
}

func (s *accountService) validateIdentity(name, email, mobile, pin string) (identity, error) {
	id := identity{
		name:   strings.TrimSpace(name),
		email:  utils.NormalizeEmail(email),
		mobile: utils.NormalizeMobile(mobile),
	}
	switch {
	case id.name == "":
		return identity{}, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	case id.email == "" || !strings.Contains(id.email, "@"):
		return identity{}, fmt.Errorf("%w: a valid email is required", apperrors.ErrValidation)
	case !utils.IsValidMobile(id.mobile):
		return identity{}, fmt.Errorf("%w: mobile number must be 10 to 15 digits", apperrors.ErrValidation)
	case !utils.IsValidPIN(pin):
		return identity{}, fmt.Errorf("%w: PIN must be 4 to 6 digits", apperrors.ErrValidation)
	}
	hash, err := s.hasher.Hash(pin)
	if err != nil {
		return identity{}, fmt.Errorf("failed to hash PIN: %w", err)
	}
	id.pinHash = hash
	return id, nil
}

// ensureUnclaimed is a fast path for the common duplicate case. The unique indexes
// remain the authority when two registrations race.
func (s *accountService) ensureUnclaimed(ctx context.Context, email, mobile string) error {
	if _, err := s.accountRepo.FindAccountByEmail(ctx, email); err == nil {
		return apperrors.ErrDuplicateIdentity
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if _, err := s.accountRepo.FindAccountByMobile(ctx, mobile); err == nil {
		return apperrors.ErrDuplicateIdentity
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}

func (s *accountService) create(ctx context.Context, id identity, role domain.Role, status domain.Status) (*domain.Account, error) {
	if err := s.ensureUnclaimed(ctx, id.email, id.mobile); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		Name:         id.name,
		Email:        id.email,
		MobileNumber: id.mobile,
		PINHash:      id.pinHash,
		Role:         role,
		Status:       status,
		Balance:      0,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     systemActor,
			LastUpdatedAt: now,
			LastUpdatedBy: systemActor,
		},
	}
	event := newEvent(domain.EventAccountRegistered, account.AccountID, now, map[string]any{
		"role":   string(role),
		"status": string(status),
	})

	// Not retried: a lost commit would turn the retry into a spurious duplicate.
	if err := s.accountRepo.CreateAccount(ctx, account, event); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		s.LogError(ctx, err, "Failed to create account", slog.String("role", string(role)))
		return nil, err
	}
	return &account, nil
}

// Register creates a pending account with zero balance.
func (s *accountService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Account, error) {
	role, ok := domain.ParseRole(req.Role)
	if !ok || role == domain.RoleAdmin {
		return nil, apperrors.ErrInvalidRole
	}
	id, err := s.validateIdentity(req.Name, req.Email, req.MobileNumber, req.PIN)
	if err != nil {
		return nil, err
	}

	account, err := s.create(ctx, id, role, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Account registered",
		slog.String("account_id", account.AccountID),
		slog.String("role", string(role)))
	return account, nil
}

// CreateAdmin creates an active administrator. Administrators never receive a bonus.
func (s *accountService) CreateAdmin(ctx context.Context, req dto.CreateAdminRequest) (*domain.Account, error) {
	id, err := s.validateIdentity(req.Name, req.Email, req.MobileNumber, req.PIN)
	if err != nil {
		return nil, err
	}
	account, err := s.create(ctx, id, domain.RoleAdmin, domain.StatusActive)
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Administrator created", slog.String("account_id", account.AccountID))
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByID(ctx, accountID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, actor domain.Principal, limit int, offset int) ([]domain.Account, error) {
	return s.list(ctx, actor, domain.AccountFilter{}, limit, offset)
}

func (s *accountService) SearchAccountsByName(ctx context.Context, actor domain.Principal, name string, limit int, offset int) ([]domain.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	return s.list(ctx, actor, domain.AccountFilter{NameContains: name}, limit, offset)
}

func (s *accountService) list(ctx context.Context, actor domain.Principal, filter domain.AccountFilter, limit, offset int) ([]domain.Account, error) {
	if !actor.IsAdmin() {
		s.LogWarn(ctx, "Account listing denied", slog.String("actor_id", actor.AccountID))
		return nil, apperrors.ErrForbidden
	}
	limit, offset = pagination.Clamp(limit, offset)
	accounts, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) ([]domain.Account, error) {
		return s.accountRepo.ListAccounts(ctx, filter, limit, offset)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}
