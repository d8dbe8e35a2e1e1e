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
	"github.com/SscSPs/secure_pay/internal/utils"
	"github.com/SscSPs/secure_pay/internal/utils/pagination"
	"github.com/google/uuid"
)

// Operation labels for metrics.
const (
	OperationTransfer = "transfer"
	OperationCashOut  = "cash_out"
)

const maxIdempotencyKeyLength = 128

type ledgerService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	ledgerRepo  portsrepo.LedgerRepositoryFacade
	recorder    portssvc.OperationRecorder
	retry       RetryPolicy
	now         func() time.Time
}

// NewLedgerService creates the service that moves money between accounts.
func NewLedgerService(accountRepo portsrepo.AccountReader, ledgerRepo portsrepo.LedgerRepositoryFacade, recorder portssvc.OperationRecorder, retry RetryPolicy) portssvc.LedgerSvcFacade {
	if recorder == nil {
		recorder = portssvc.NoopRecorder{}
	}
	return &ledgerService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		recorder:    recorder,
		retry:       retry,
		now:         time.Now,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func validateAmount(amount int64) error {
	if amount <= 0 || amount > domain.MaxAmount {
		return apperrors.ErrInvalidAmount
	}
	return nil
}

func normalizeIdempotencyKey(key string) (string, error) {
	if key == "" {
		return uuid.NewString(), nil
	}
	if len(key) > maxIdempotencyKeyLength {
		return "", fmt.Errorf("%w: idempotency key longer than %d characters", apperrors.ErrValidation, maxIdempotencyKeyLength)
	}
	return key, nil
}

func (s *ledgerService) findAccount(ctx context.Context, find func(context.Context) (*domain.Account, error)) (*domain.Account, error) {
	return withStoreRetry(ctx, s.retry, find)
}

// replay returns the entry already recorded under key, or nil when there is none.
// A key reused for a different kind, amount or counterparty is rejected.
func (s *ledgerService) replay(ctx context.Context, accountID, key string, kind domain.EntryKind, amount int64, counterpartyID string) (*domain.LedgerEntry, error) {
	entry, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) (*domain.LedgerEntry, error) {
		return s.ledgerRepo.FindEntryByIdempotencyKey(ctx, accountID, key)
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if entry.Kind != kind || entry.Amount != amount || entry.CounterpartyID != counterpartyID {
		return nil, fmt.Errorf("%w: idempotency key already used for a different operation", apperrors.ErrValidation)
	}
	return entry, nil
}

// rejectDebit tells an inactive sender apart from an insufficient balance after the
// conditional debit failed.
func (s *ledgerService) rejectDebit(ctx context.Context, accountID string) error {
	account, err := s.findAccount(ctx, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByID(ctx, accountID)
	})
	switch {
	case err == nil && !account.IsActive():
		return apperrors.ErrAccountInactive
	case errors.Is(err, apperrors.ErrNotFound):
		return apperrors.ErrAccountNotFound
	case apperrors.IsRetryable(err):
		return err
	}
	return apperrors.ErrInsufficientBalance
}

func (s *ledgerService) record(operation string, err error, amount int64) {
	switch {
	case err == nil:
		s.recorder.RecordOperation(operation, portssvc.OutcomeSuccess, amount)
	case apperrors.IsRetryable(err):
		s.recorder.RecordOperation(operation, portssvc.OutcomeError, 0)
	default:
		if _, code, _ := apperrors.Classify(err); code == "INTERNAL" {
			s.recorder.RecordOperation(operation, portssvc.OutcomeError, 0)
			return
		}
		s.recorder.RecordOperation(operation, portssvc.OutcomeRejected, 0)
	}
}

// Transfer moves amount from the sender to the active account owning recipientMobile.
// The debit is conditional on the sender being active with enough balance at the moment
// of the write, so concurrent transfers can never overdraw.
func (s *ledgerService) Transfer(ctx context.Context, senderID string, recipientMobile string, amount int64, idempotencyKey string) (entry *domain.LedgerEntry, err error) {
	replayed := false
	defer func() {
		if replayed {
			s.recorder.RecordOperation(OperationTransfer, portssvc.OutcomeReplayed, 0)
			return
		}
		s.record(OperationTransfer, err, amount)
	}()

	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	key, err := normalizeIdempotencyKey(idempotencyKey)
	if err != nil {
		return nil, err
	}

	sender, err := s.findAccount(ctx, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByID(ctx, senderID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}

	// The recipient is resolved before any replay so a reused key is only honoured for
	// the same counterparty. Its status is checked afterwards: a completed transfer
	// still replays after the recipient is blocked.
	mobile := utils.NormalizeMobile(recipientMobile)
	recipient, err := s.findAccount(ctx, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByMobile(ctx, mobile)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrRecipientNotFound
		}
		return nil, err
	}
	if recipient.AccountID == sender.AccountID {
		return nil, apperrors.ErrSameAccount
	}

	if idempotencyKey != "" {
		prior, err := s.replay(ctx, senderID, key, domain.EntryTransfer, amount, recipient.AccountID)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			replayed = true
			return prior, nil
		}
	}

	if !sender.IsActive() {
		return nil, apperrors.ErrAccountInactive
	}
	if !recipient.IsActive() {
		return nil, apperrors.ErrRecipientNotFound
	}

	now := s.now().UTC()
	pending := domain.LedgerEntry{
		EntryID:        uuid.NewString(),
		Kind:           domain.EntryTransfer,
		AccountID:      sender.AccountID,
		CounterpartyID: recipient.AccountID,
		Amount:         amount,
		IdempotencyKey: key,
		CreatedAt:      now,
	}
	event := newEvent(domain.EventTransferCompleted, sender.AccountID, now, map[string]any{
		"entryID":     pending.EntryID,
		"recipientID": recipient.AccountID,
		"amount":      amount,
	})

	// Retrying is safe: the idempotency key turns a committed first attempt into ErrDuplicate.
	entry, err = withStoreRetry(ctx, s.retry, func(ctx context.Context) (*domain.LedgerEntry, error) {
		return s.ledgerRepo.ApplyTransfer(ctx, pending, event)
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPredicateFailed):
			return nil, s.rejectDebit(ctx, sender.AccountID)
		case errors.Is(err, apperrors.ErrDuplicate):
			prior, rerr := s.replay(ctx, senderID, key, domain.EntryTransfer, amount, recipient.AccountID)
			if rerr != nil {
				return nil, rerr
			}
			if prior == nil {
				return nil, err
			}
			replayed = true
			return prior, nil
		case errors.Is(err, apperrors.ErrRecipientNotFound):
			return nil, err
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.ErrAccountNotFound
		}
		s.LogError(ctx, err, "Transfer failed",
			slog.String("sender_id", sender.AccountID),
			slog.String("recipient_id", recipient.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Transfer completed",
		slog.String("entry_id", entry.EntryID),
		slog.String("sender_id", sender.AccountID),
		slog.String("recipient_id", recipient.AccountID),
		slog.Int64("amount", amount))
	return entry, nil
}

// CashOut withdraws amount from an active account with enough balance.
func (s *ledgerService) CashOut(ctx context.Context, accountID string, amount int64, idempotencyKey string) (entry *domain.LedgerEntry, err error) {
	replayed := false
	defer func() {
		if replayed {
			s.recorder.RecordOperation(OperationCashOut, portssvc.OutcomeReplayed, 0)
			return
		}
		s.record(OperationCashOut, err, amount)
	}()

	if err := validateAmount(amount); err != nil {
		return nil, err
	}
	key, err := normalizeIdempotencyKey(idempotencyKey)
	if err != nil {
		return nil, err
	}

	account, err := s.findAccount(ctx, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByID(ctx, accountID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}

	if idempotencyKey != "" {
		prior, err := s.replay(ctx, accountID, key, domain.EntryCashOut, amount, "")
		if err != nil {
			return nil, err
		}
		if prior != nil {
			replayed = true
			return prior, nil
		}
	}

	if !account.IsActive() {
		return nil, apperrors.ErrAccountInactive
	}

	now := s.now().UTC()
	pending := domain.LedgerEntry{
		EntryID:        uuid.NewString(),
		Kind:           domain.EntryCashOut,
		AccountID:      account.AccountID,
		Amount:         amount,
		IdempotencyKey: key,
		CreatedAt:      now,
	}
	event := newEvent(domain.EventCashOutCompleted, account.AccountID, now, map[string]any{
		"entryID": pending.EntryID,
		"amount":  amount,
	})

	entry, err = withStoreRetry(ctx, s.retry, func(ctx context.Context) (*domain.LedgerEntry, error) {
		return s.ledgerRepo.ApplyCashOut(ctx, pending, event)
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPredicateFailed):
			return nil, s.rejectDebit(ctx, account.AccountID)
		case errors.Is(err, apperrors.ErrDuplicate):
			prior, rerr := s.replay(ctx, accountID, key, domain.EntryCashOut, amount, "")
			if rerr != nil {
				return nil, rerr
			}
			if prior == nil {
				return nil, err
			}
			replayed = true
			return prior, nil
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.ErrAccountNotFound
		}
		s.LogError(ctx, err, "Cash-out failed", slog.String("account_id", account.AccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Cash-out completed",
		slog.String("entry_id", entry.EntryID),
		slog.String("account_id", account.AccountID),
		slog.Int64("amount", amount))
	return entry, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	account, err := s.findAccount(ctx, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByID(ctx, accountID)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrAccountNotFound
		}
		return 0, err
	}
	return account.Balance, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error) {
	limit, offset = pagination.Clamp(limit, offset)
	entries, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) ([]domain.LedgerEntry, error) {
		return s.ledgerRepo.ListEntriesByAccount(ctx, accountID, limit, offset)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list ledger entries", slog.String("account_id", accountID))
		return nil, err
	}
	if entries == nil {
		entries = []domain.LedgerEntry{}
	}
	return entries, nil
}
