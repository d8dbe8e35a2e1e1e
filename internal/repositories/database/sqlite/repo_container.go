package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the SQLite implementations of every repository port.
func NewRepositoryProvider(db *sql.DB) portsrepo.RepositoryProvider {
	accountRepo := newAccountRepository(db)
	return portsrepo.RepositoryProvider{
		AccountRepo: accountRepo,
		LedgerRepo:  newLedgerRepository(db),
		OutboxRepo:  newOutboxRepository(db),
		Health:      &accountRepo.BaseRepository,
	}
}
