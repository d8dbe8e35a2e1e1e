package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	"github.com/SscSPs/secure_pay/internal/models"
	"github.com/SscSPs/secure_pay/internal/utils/mapping"
)

const entryColumns = `entry_id, kind, account_id, counterparty_id, amount, balance_after, idempotency_key, created_at`

// LedgerRepository applies balance movements and stores ledger entries.
type LedgerRepository struct {
	BaseRepository
}

func newLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.LedgerRepositoryFacade = (*LedgerRepository)(nil)

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var (
		m         models.LedgerEntry
		createdAt int64
	)
	if err := row.Scan(&m.EntryID, &m.Kind, &m.AccountID, &m.CounterpartyID, &m.Amount, &m.BalanceAfter,
		&m.IdempotencyKey, &createdAt); err != nil {
		return nil, err
	}
	m.CreatedAt = fromUnix(createdAt)
	e := mapping.ToDomainLedgerEntry(m)
	return &e, nil
}

// ApplyTransfer runs debit, credit, entry and event in one transaction.
func (r *LedgerRepository) ApplyTransfer(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error) {
	var result *domain.LedgerEntry
	err := r.WithTx(ctx, func(tx *sql.Tx) error {
		if err := checkIdempotencyKey(ctx, tx, entry.AccountID, entry.IdempotencyKey); err != nil {
			return err
		}
		balanceAfter, err := debit(ctx, tx, entry.AccountID, entry.Amount, entry.CreatedAt)
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE accounts
			SET balance = balance + ?, last_updated_at = ?, last_updated_by = ?
			WHERE account_id = ? AND status = 'active'`,
			entry.Amount, toUnix(entry.CreatedAt), entry.AccountID, entry.CounterpartyID,
		)
		if err != nil {
			return translateError(err, "failed to credit recipient")
		}
		if n, err := res.RowsAffected(); err != nil {
			return translateError(err, "failed to credit recipient")
		} else if n == 0 {
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
func (r *LedgerRepository) ApplyCashOut(ctx context.Context, entry domain.LedgerEntry, event domain.LedgerEvent) (*domain.LedgerEntry, error) {
	var result *domain.LedgerEntry
	err := r.WithTx(ctx, func(tx *sql.Tx) error {
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

func (r *LedgerRepository) FindEntryByIdempotencyKey(ctx context.Context, accountID string, key string) (*domain.LedgerEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = ? AND idempotency_key = ?`, accountID, key)
	e, err := scanEntry(row)
	if err != nil {
		return nil, translateError(err, "failed to query ledger entry")
	}
	return e, nil
}

func (r *LedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = ? OR counterparty_id = ?
		ORDER BY created_at DESC, entry_id
		LIMIT ? OFFSET ?`, accountID, accountID, limit, offset)
	if err != nil {
		return nil, translateError(err, "failed to list ledger entries")
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan ledger entry")
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to read ledger entries")
	}
	return entries, nil
}

func checkIdempotencyKey(ctx context.Context, tx *sql.Tx, accountID, key string) error {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE account_id = ? AND idempotency_key = ?)`,
		accountID, key).Scan(&exists)
	if err != nil {
		return translateError(err, "failed to check idempotency key")
	}
	if exists {
		return apperrors.ErrDuplicate
	}
	return nil
}

// debit is the conditional decrement. A missing account is ErrNotFound; an inactive
// or underfunded one is ErrPredicateFailed.
func debit(ctx context.Context, tx *sql.Tx, accountID string, amount int64, at time.Time) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `
		UPDATE accounts
		SET balance = balance - ?, last_updated_at = ?, last_updated_by = ?
		WHERE account_id = ? AND status = 'active' AND balance >= ?
		RETURNING balance`,
		amount, toUnix(at), accountID, accountID, amount,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_id = ?)`, accountID).Scan(&exists); err != nil {
			return 0, translateError(err, "failed to look up account")
		}
		if !exists {
			return 0, apperrors.ErrNotFound
		}
		return 0, apperrors.ErrPredicateFailed
	}
	if err != nil {
		return 0, translateError(err, "failed to debit account")
	}
	return balance, nil
}

func insertEntry(ctx context.Context, tx *sql.Tx, entry domain.LedgerEntry) error {
	m := mapping.ToModelLedgerEntry(entry)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO ledger_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.EntryID, m.Kind, m.AccountID, m.CounterpartyID, m.Amount, m.BalanceAfter, m.IdempotencyKey, toUnix(m.CreatedAt),
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
