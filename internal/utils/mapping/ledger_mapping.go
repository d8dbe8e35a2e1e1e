package mapping

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/SscSPs/secure_pay/internal/models"
)

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:        d.EntryID,
		Kind:           string(d.Kind),
		AccountID:      d.AccountID,
		CounterpartyID: sql.NullString{String: d.CounterpartyID, Valid: d.CounterpartyID != ""},
		Amount:         d.Amount,
		BalanceAfter:   d.BalanceAfter,
		IdempotencyKey: d.IdempotencyKey,
		CreatedAt:      d.CreatedAt,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:        m.EntryID,
		Kind:           domain.EntryKind(m.Kind),
		AccountID:      m.AccountID,
		CounterpartyID: m.CounterpartyID.String,
		Amount:         m.Amount,
		BalanceAfter:   m.BalanceAfter,
		IdempotencyKey: m.IdempotencyKey,
		CreatedAt:      m.CreatedAt,
	}
}

// ToDomainLedgerEntries converts a slice of model LedgerEntries
func ToDomainLedgerEntries(ms []models.LedgerEntry) []domain.LedgerEntry {
	entries := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		entries[i] = ToDomainLedgerEntry(m)
	}
	return entries
}

// ToModelOutboxMessage serializes an event into a pending outbox row.
func ToModelOutboxMessage(e domain.LedgerEvent) (models.OutboxMessage, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return models.OutboxMessage{}, fmt.Errorf("failed to marshal event %s: %w", e.EventID, err)
	}
	return models.OutboxMessage{
		EventID:       e.EventID,
		RoutingKey:    string(e.Type),
		Payload:       payload,
		Status:        string(domain.OutboxPending),
		NextAttemptAt: e.OccurredAt,
		CreatedAt:     e.OccurredAt,
	}, nil
}

// ToDomainOutboxMessage converts a model OutboxMessage to a domain OutboxMessage
func ToDomainOutboxMessage(m models.OutboxMessage) domain.OutboxMessage {
	return domain.OutboxMessage{
		ID:         m.ID,
		EventID:    m.EventID,
		RoutingKey: m.RoutingKey,
		Payload:    m.Payload,
		Attempts:   m.Attempts,
		CreatedAt:  m.CreatedAt,
	}
}
