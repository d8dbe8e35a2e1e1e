package services

import (
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/google/uuid"
)

func newEvent(eventType domain.EventType, accountID string, at time.Time, payload map[string]any) domain.LedgerEvent {
	return domain.LedgerEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		AccountID:  accountID,
		Payload:    payload,
		OccurredAt: at,
	}
}
