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

const accountColumns = `account_id, name, email, mobile_number, pin_hash, role, status, balance,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxAccountRepository stores accounts in PostgreSQL.
type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

// CreateAccount inserts the account and its registration event in one transaction.
// Uniqueness of email and mobile number is enforced by the unique indexes.
func (r *PgxAccountRepository) CreateAccount(ctx context.Context, account domain.Account, event domain.LedgerEvent) error {
	m := mapping.ToModelAccount(account)
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO accounts (`+accountColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			m.AccountID, m.Name, m.Email, m.MobileNumber, m.PINHash, m.Role, m.Status, m.Balance,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return translateError(err, "failed to insert account")
		}
		return enqueueEventTx(ctx, tx, event)
	})
}

func (r *PgxAccountRepository) findOne(ctx context.Context, where string, arg any) (*domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where+` LIMIT 1`, arg)
	if err != nil {
		return nil, translateError(err, "failed to query account")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, translateError(err, "failed to scan account")
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return r.findOne(ctx, "account_id = $1", accountID)
}

// FindAccountByEmail retrieves an account by email.
func (r *PgxAccountRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "email = $1", email)
}

// FindAccountByMobile retrieves an account by mobile number.
func (r *PgxAccountRepository) FindAccountByMobile(ctx context.Context, mobileNumber string) (*domain.Account, error) {
	return r.findOne(ctx, "mobile_number = $1", mobileNumber)
}

// FindAccountByIdentifier retrieves an account whose email or mobile number equals identifier.
func (r *PgxAccountRepository) FindAccountByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	return r.findOne(ctx, "email = $1 OR mobile_number = $1", identifier)
}

// ListAccounts returns accounts newest first.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, filter domain.AccountFilter, limit int, offset int) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE ($1::boolean OR role <> 'admin')
		  AND ($2::text = '' OR name ILIKE '%' || $2::text || '%' ESCAPE '\')
		ORDER BY created_at DESC, account_id
		LIMIT $3 OFFSET $4`,
		filter.IncludeAdmins, escapeLike(filter.NameContains), limit, offset,
	)
	if err != nil {
		return nil, translateError(err, "failed to list accounts")
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		return nil, translateError(err, "failed to scan accounts")
	}
	return mapping.ToDomainAccounts(ms), nil
}

// ConditionalUpdate applies upd in a single UPDATE whose WHERE clause carries cond,
// so the predicate is evaluated against the row at the moment it is locked.
func (r *PgxAccountRepository) ConditionalUpdate(ctx context.Context, accountID string, cond domain.AccountCondition, upd domain.AccountUpdate, event *domain.LedgerEvent) (*domain.Account, bool, error) {
	var updated *domain.Account
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			UPDATE accounts
			SET status = CASE WHEN $2::text = '' THEN status ELSE $2::text END,
			    balance = balance + $3,
			    last_updated_at = $4,
			    last_updated_by = $5
			WHERE account_id = $1
			  AND ($6::text = '' OR status = $6::text)
			  AND balance >= $7
			RETURNING `+accountColumns,
			accountID, string(upd.Status), upd.BalanceDelta, upd.StampedAt(time.Now()).UTC(), upd.UpdatedBy,
			string(cond.Status), cond.MinBalance,
		)
		if err != nil {
			return translateError(err, "failed to update account")
		}
		m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
		if err != nil {
			return translateError(err, "failed to scan updated account")
		}
		acc := mapping.ToDomainAccount(m)
		updated = &acc
		if event != nil {
			return enqueueEventTx(ctx, tx, *event)
		}
		return nil
	})

	switch {
	case err == nil:
		return updated, true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		// The predicate or the id did not match; tell them apart.
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
