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

const accountColumns = `account_id, name, email, mobile_number, pin_hash, role, status, balance,
	created_at, created_by, last_updated_at, last_updated_by`

// AccountRepository stores accounts in SQLite.
type AccountRepository struct {
	BaseRepository
}

func newAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		m                  models.Account
		createdAt, updated int64
	)
	if err := row.Scan(&m.AccountID, &m.Name, &m.Email, &m.MobileNumber, &m.PINHash, &m.Role, &m.Status, &m.Balance,
		&createdAt, &m.CreatedBy, &updated, &m.LastUpdatedBy); err != nil {
		return nil, err
	}
	m.CreatedAt = fromUnix(createdAt)
	m.LastUpdatedAt = fromUnix(updated)
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// CreateAccount inserts the account and its registration event in one transaction.
func (r *AccountRepository) CreateAccount(ctx context.Context, account domain.Account, event domain.LedgerEvent) error {
	m := mapping.ToModelAccount(account)
	return r.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (`+accountColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.AccountID, m.Name, m.Email, m.MobileNumber, m.PINHash, m.Role, m.Status, m.Balance,
			toUnix(m.CreatedAt), m.CreatedBy, toUnix(m.LastUpdatedAt), m.LastUpdatedBy,
		)
		if err != nil {
			return translateError(err, "failed to insert account")
		}
		return enqueueEventTx(ctx, tx, event)
	})
}

func (r *AccountRepository) findOne(ctx context.Context, q queryer, where string, args ...any) (*domain.Account, error) {
	row := q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where+` LIMIT 1`, args...)
	acc, err := scanAccount(row)
	if err != nil {
		return nil, translateError(err, "failed to query account")
	}
	return acc, nil
}

func (r *AccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, r.DB, "account_id = ?", accountID)
}

func (r *AccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, r.DB, "email = ?", email)
}

func (r *AccountRepository) FindAccountByMobile(ctx context.Context, mobileNumber string) (*domain.Account, error) {
	return r.findOne(ctx, r.DB, "mobile_number = ?", mobileNumber)
}

func (r *AccountRepository) FindAccountByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	return r.findOne(ctx, r.DB, "email = ? OR mobile_number = ?", identifier, identifier)
}

// ListAccounts returns accounts newest first. SQLite LIKE is case-insensitive for ASCII.
func (r *AccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, offset int) ([]domain.Account, error) {
	name := escapeLike(filter.NameContains)
	includeAdmins := 0
	if filter.IncludeAdmins {
		includeAdmins = 1
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE (? OR role <> 'admin')
		  AND (? = '' OR name LIKE '%' || ? || '%' ESCAPE '\')
		ORDER BY created_at DESC, account_id
		LIMIT ? OFFSET ?`,
		includeAdmins, name, name, limit, offset,
	)
	if err != nil {
		return nil, translateError(err, "failed to list accounts")
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, translateError(err, "failed to scan account")
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "failed to read accounts")
	}
	return accounts, nil
}

// ConditionalUpdate evaluates cond inside the UPDATE statement itself.
func (r *AccountRepository) ConditionalUpdate(ctx context.Context, accountID string, cond domain.AccountCondition, upd domain.AccountUpdate, event *domain.LedgerEvent) (*domain.Account, bool, error) {
	var updated *domain.Account
	err := r.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			UPDATE accounts
			SET status = CASE WHEN ? = '' THEN status ELSE ? END,
			    balance = balance + ?,
			    last_updated_at = ?,
			    last_updated_by = ?
			WHERE account_id = ?
			  AND (? = '' OR status = ?)
			  AND balance >= ?
			RETURNING `+accountColumns,
			string(upd.Status), string(upd.Status), upd.BalanceDelta, toUnix(upd.StampedAt(time.Now())), upd.UpdatedBy,
			accountID, string(cond.Status), string(cond.Status), cond.MinBalance,
		)
		acc, err := scanAccount(row)
		if err != nil {
			return translateError(err, "failed to update account")
		}
		updated = acc
		if event != nil {
			return enqueueEventTx(ctx, tx, *event)
		}
		return nil
	})

	switch {
	case err == nil:
		return updated, true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		if _, findErr := r.FindAccountByID(ctx, accountID); findErr != nil {
			return nil, false, findErr
		}
		return nil, false, nil
	case errors.Is(err, apperrors.ErrPredicateFailed):
		return nil, false, nil
	default:
		return nil, false, err
	}
}
