package mapping

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerEntryCounterpartyNullability(t *testing.T) {
	cashOut := ToModelLedgerEntry(domain.LedgerEntry{EntryID: "e1", Kind: domain.EntryCashOut, AccountID: "a1", Amount: 5})
	assert.False(t, cashOut.CounterpartyID.Valid)

	transfer := ToModelLedgerEntry(domain.LedgerEntry{EntryID: "e2", Kind: domain.EntryTransfer, AccountID: "a1", CounterpartyID: "a2", Amount: 5})
	assert.True(t, transfer.CounterpartyID.Valid)
	assert.Equal(t, "a2", ToDomainLedgerEntry(transfer).CounterpartyID)
}

func TestToModelOutboxMessage(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := ToModelOutboxMessage(domain.LedgerEvent{
		EventID:    "evt-1",
		Type:       domain.EventAccountActivated,
		AccountID:  "a1",
		Payload:    map[string]any{"bonus": 40},
		OccurredAt: now,
	})
	require.NoError(t, err)

	assert.Equal(t, "account.activated", msg.RoutingKey)
	assert.Equal(t, string(domain.OutboxPending), msg.Status)
	assert.Equal(t, now, msg.NextAttemptAt)

	var decoded domain.LedgerEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	assert.Equal(t, "evt-1", decoded.EventID)
	assert.EqualValues(t, 40, decoded.Payload["bonus"])
}

func TestAccountMappingKeepsPINHash(t *testing.T) {
	acc := domain.Account{AccountID: "a1", PINHash: "hash", Role: domain.RoleAgent, Status: domain.StatusPending}
	back := ToDomainAccount(ToModelAccount(acc))
	assert.Equal(t, acc, back)
}
