package services_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/core/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/repositories/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// newStoreBackedServices wires the real services over a throwaway SQLite store.
func newStoreBackedServices(t *testing.T) *portssvc.ServiceContainer {
	t.Helper()
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return services.NewServiceContainer(testConfig(), sqlite.NewRepositoryProvider(db), services.WithSecretHasher(plainHasher{}))
}

func register(t *testing.T, c *portssvc.ServiceContainer, n int, role string) *domain.Account {
	t.Helper()
	acc, err := c.Account.Register(context.Background(), dto.RegisterRequest{
		Name:         fmt.Sprintf("Account %d", n),
		Email:        fmt.Sprintf("acc%d@example.com", n),
		MobileNumber: fmt.Sprintf("0170000%04d", n),
		PIN:          "1234",
		Role:         role,
	})
	require.NoError(t, err)
	return acc
}

func activate(t *testing.T, c *portssvc.ServiceContainer, id string) {
	t.Helper()
	_, err := c.Lifecycle.SetStatus(context.Background(), testAdmin, id, "active")
	require.NoError(t, err)
}

func TestConcurrentActivationGrantsBonusOnce(t *testing.T) {
	c := newStoreBackedServices(t)
	agent := register(t, c, 1, "agent")

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := c.Lifecycle.SetStatus(context.Background(), testAdmin, agent.AccountID, "active")
			return err
		})
	}
	require.NoError(t, g.Wait())

	balance, err := c.Ledger.GetBalance(context.Background(), agent.AccountID)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentActivationBonus, balance)

	// block and reactivate: still no second bonus
	_, err = c.Lifecycle.SetStatus(context.Background(), testAdmin, agent.AccountID, "blocked")
	require.NoError(t, err)
	activate(t, c, agent.AccountID)
	balance, err = c.Ledger.GetBalance(context.Background(), agent.AccountID)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentActivationBonus, balance)
}

func TestConcurrentTransfersNeverOverdraw(t *testing.T) {
	c := newStoreBackedServices(t)
	ctx := context.Background()
	sender := register(t, c, 1, "user")
	recipient := register(t, c, 2, "user")
	activate(t, c, sender.AccountID)
	activate(t, c, recipient.AccountID)

	// the sender holds 40 from the bonus; ten transfers of 7 can only partly succeed
	var succeeded, insufficient atomic.Int64
	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := c.Ledger.Transfer(ctx, sender.AccountID, recipient.MobileNumber, 7, "")
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperrors.ErrInsufficientBalance):
				insufficient.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(5), succeeded.Load())
	assert.Equal(t, int64(5), insufficient.Load())

	senderBalance, err := c.Ledger.GetBalance(ctx, sender.AccountID)
	require.NoError(t, err)
	recipientBalance, err := c.Ledger.GetBalance(ctx, recipient.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), senderBalance)
	assert.Equal(t, int64(75), recipientBalance)
	assert.Equal(t, int64(80), senderBalance+recipientBalance)
}

func TestTransferRejectionsLeaveBalancesUntouched(t *testing.T) {
	c := newStoreBackedServices(t)
	ctx := context.Background()
	sender := register(t, c, 1, "agent")
	pending := register(t, c, 2, "user")
	activate(t, c, sender.AccountID)

	_, err := c.Ledger.Transfer(ctx, sender.AccountID, pending.MobileNumber, 10, "")
	assert.ErrorIs(t, err, apperrors.ErrRecipientNotFound)

	_, err = c.Ledger.Transfer(ctx, sender.AccountID, "01799999999", 10, "")
	assert.ErrorIs(t, err, apperrors.ErrRecipientNotFound)

	_, err = c.Ledger.Transfer(ctx, pending.AccountID, sender.MobileNumber, 10, "")
	assert.ErrorIs(t, err, apperrors.ErrAccountInactive)

	_, err = c.Ledger.Transfer(ctx, sender.AccountID, sender.MobileNumber, 10, "")
	assert.ErrorIs(t, err, apperrors.ErrSameAccount)

	balance, err := c.Ledger.GetBalance(ctx, sender.AccountID)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentActivationBonus, balance)
}

func TestCashOutIdempotentReplay(t *testing.T) {
	c := newStoreBackedServices(t)
	ctx := context.Background()
	agent := register(t, c, 1, "agent")
	activate(t, c, agent.AccountID)

	first, err := c.Ledger.CashOut(ctx, agent.AccountID, 2500, "atm-42")
	require.NoError(t, err)
	second, err := c.Ledger.CashOut(ctx, agent.AccountID, 2500, "atm-42")
	require.NoError(t, err)
	assert.Equal(t, first.EntryID, second.EntryID)

	balance, err := c.Ledger.GetBalance(ctx, agent.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), balance)

	_, err = c.Ledger.CashOut(ctx, agent.AccountID, 7501, "")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

	entries, err := c.Ledger.ListEntries(ctx, agent.AccountID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTransferKeyReusedForAnotherRecipientMovesNothing(t *testing.T) {
	c := newStoreBackedServices(t)
	ctx := context.Background()
	sender := register(t, c, 1, "agent")
	first := register(t, c, 2, "user")
	second := register(t, c, 3, "user")
	for _, acc := range []*domain.Account{sender, first, second} {
		activate(t, c, acc.AccountID)
	}

	entry, err := c.Ledger.Transfer(ctx, sender.AccountID, first.MobileNumber, 100, "k1")
	require.NoError(t, err)
	assert.Equal(t, first.AccountID, entry.CounterpartyID)

	_, err = c.Ledger.Transfer(ctx, sender.AccountID, second.MobileNumber, 100, "k1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	balance, err := c.Ledger.GetBalance(ctx, second.AccountID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserActivationBonus, balance)
	balance, err = c.Ledger.GetBalance(ctx, sender.AccountID)
	require.NoError(t, err)
	assert.Equal(t, domain.AgentActivationBonus-100, balance)
}

func TestConcurrentRegistrationsWithOneEmail(t *testing.T) {
	c := newStoreBackedServices(t)
	ctx := context.Background()

	const n = 10
	var succeeded, duplicate atomic.Int64
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			_, err := c.Account.Register(ctx, dto.RegisterRequest{
				Name:         fmt.Sprintf("Racer %d", i),
				Email:        "racer@example.com",
				MobileNumber: fmt.Sprintf("0160000%04d", i),
				PIN:          "1234",
				Role:         "user",
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperrors.ErrDuplicateIdentity):
				duplicate.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(1), succeeded.Load())
	assert.Equal(t, int64(n-1), duplicate.Load())

	all, err := c.Account.ListAccounts(ctx, testAdmin, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDuplicateRegistrationAndLogin(t *testing.T) {
	c := newStoreBackedServices(t)
	ctx := context.Background()
	acc := register(t, c, 1, "user")

	_, err := c.Account.Register(ctx, dto.RegisterRequest{
		Name: "Copy", Email: "ACC1@example.com", MobileNumber: "01799999999", PIN: "1234", Role: "user",
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	resp, err := c.Auth.Login(ctx, dto.LoginRequest{Identifier: acc.MobileNumber, PIN: "1234"})
	require.NoError(t, err)
	principal, err := c.Token.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.AccountID, principal.AccountID)
	assert.Equal(t, domain.RoleUser, principal.Role)
}

func TestAdminListingHidesAdministrators(t *testing.T) {
	c := newStoreBackedServices(t)
	ctx := context.Background()
	register(t, c, 1, "user")
	register(t, c, 2, "agent")
	_, err := c.Account.CreateAdmin(ctx, dto.CreateAdminRequest{
		Name: "Account Root", Email: "root@example.com", MobileNumber: "01800000000", PIN: "1234",
	})
	require.NoError(t, err)

	all, err := c.Account.ListAccounts(ctx, testAdmin, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := c.Account.SearchAccountsByName(ctx, testAdmin, "account 2", 50, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.RoleAgent, found[0].Role)
}
