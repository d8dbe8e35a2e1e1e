package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	"github.com/SscSPs/secure_pay/internal/models"
	"github.com/SscSPs/secure_pay/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, kind, account_id, counterparty_id, amount, balance_after, idempotency_key, created_at`

// PgxLedgerRepository applies balance movements and stores ledger entries.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

// ApplyTransfer runs debit, credit, entry and event in one transaction. Both account
// rows are locked in id order first so that opposing transfers cannot deadlock.
func (r *PgxLedgerRepository) ApplyTransfer(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error) {
	var result *domain.LedgerEntry
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockAccounts(ctx, tx, entry.AccountID, entry.CounterpartyID); err != nil {
			return err
		}
		if err := checkIdempotencyKey(ctx, tx, entry.AccountID, entry.IdempotencyKey); err != nil {
			return err
		}

		balanceAfter, err := debit(ctx, tx, entry.AccountID, entry.Amount, entry.CreatedAt)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE accounts
			SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
			WHERE account_id = $1 AND status = 'active'`,
			entry.CounterpartyID, entry.Amount, entry.CreatedAt, entry.AccountID,
		)
		if err != nil {
			return translateError(err, "failed to credit recipient")
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrRecipientNotFound
		}

		entry.BalanceAfter = balanceAfter
		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		result = &entry
		return enqueueEventTx(ctx, tx, withBalance(event, balanceAfter))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyCashOut debits the account, records the entry and enqueues the event atomically.
func (r *PgxLedgerRepository) ApplyCashOut(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error) {
	var result *domain.LedgerEntry
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		if err := lockAccounts(ctx, tx, entry.AccountID); err != nil {
			return err
		}
		if err := checkIdempotencyKey(ctx, tx, entry.AccountID, entry.IdempotencyKey); err != nil {
			return err
		}
		balanceAfter, err := debit(ctx, tx, entry.AccountID, entry.Amount, entry.CreatedAt)
		if err != nil {
			return err
		}
		entry.BalanceAfter = balanceAfter
		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}
		result = &entry
		return enqueueEventTx(ctx, tx, withBalance(event, balanceAfter))
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindEntryByIdempotencyKey returns the entry accountID created under key.
func (r *PgxLedgerRepository) FindEntryByIdempotencyKey(ctx context.Context, accountID string, key string) (*domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1 AND idempotency_key = $2`, accountID, key)
	if err != nil {
		return nil, translateError(err, "failed to query ledger entry")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.LedgerEntry])
	if err != nil {
		return nil, translateError(err, "failed to scan ledger entry")
	}
	e := mapping.ToDomainLedgerEntry(m)
	return &e, nil
}

// ListEntriesByAccount returns entries on either side of accountID, newest first.
func (r *PgxLedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1 OR counterparty_id = $1
		ORDER BY created_at DESC, entry_id
		LIMIT $2 OFFSET $3`, accountID, limit, offset)
	if err != nil {
		return nil, translateError(err, "failed to list ledger entries")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.LedgerEntry])
	if err != nil {
		return nil, translateError(err, "failed to scan ledger entries")
	}
	return mapping.ToDomainLedgerEntries(ms), nil
}

// lockAccounts takes row locks in a deterministic order. A missing first id is reported
// as ErrNotFound; other ids are left for the caller to check.
func lockAccounts(ctx context.Context, tx pgx.Tx, accountID string, others ...string) error {
	ids := append([]string{accountID}, others...)
	rows, err := tx.Query(ctx, `
		SELECT account_id FROM accounts
		WHERE account_id = ANY($1)
		ORDER BY account_id
		FOR UPDATE`, ids)
	if err != nil {
		return translateError(err, "failed to lock accounts")
	}
	locked, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return translateError(err, "failed to lock accounts")
	}
	for _, id := range locked {
		if id == accountID {
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func checkIdempotencyKey(ctx context.Context, tx pgx.Tx, accountID, key string) error {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE account_id = $1 AND idempotency_key = $2)`,
		accountID, key).Scan(&exists)
	if err != nil {
		return translateError(err, "failed to check idempotency key")
	}
	if exists {
		return apperrors.ErrDuplicate
	}
	return nil
}

// debit is the conditional decrement: it applies only to an active account whose
// balance covers amount, and reports ErrPredicateFailed otherwise.
func debit(ctx context.Context, tx pgx.Tx, accountID string, amount int64, at time.Time) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance - $2, last_updated_at = $3, last_updated_by = $1
		WHERE account_id = $1 AND status = 'active' AND balance >= $2
		RETURNING balance`,
		accountID, amount, at,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperrors.ErrPredicateFailed
	}
	if err != nil {
		return 0, translateError(err, "failed to debit account")
	}
	return balance, nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	_, err := tx.Exec(ctx, `
		INSERT INTO ledger_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.EntryID, m.Kind, m.AccountID, m.CounterpartyID, m.Amount, m.BalanceAfter, m.IdempotencyKey, m.CreatedAt,
	)
	if err != nil {
		return translateError(err, "failed to insert ledger entry")
	}
	return nil
}

func withBalance(event domain.LedgerEvent, balanceAfter int64) domain.LedgerEvent {
	payload := make(map[string]any, len(event.Payload)+1)
	for k, v := range event.Payload {
		payload[k] = v
	}
	payload["balanceAfter"] = balanceAfter
	event.Payload = payload
	return event
}
