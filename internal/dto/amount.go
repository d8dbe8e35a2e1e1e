package dto

import (
	"bytes"
	"encoding/json"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Amount is a money value in minor units as sent by clients. It accepts JSON numbers
// and numeric strings. Decoding never fails so that malformed amounts surface as
// ErrInvalidAmount rather than as a generic binding error.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

// NewAmount builds a valid Amount from minor units.
func NewAmount(units int64) Amount {
	return Amount{Value: decimal.NewFromInt(units), Valid: true}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Valid = false
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	a.Value = v
	a.Valid = true
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Value.String()), nil
}

// Units returns the amount as positive whole minor units no larger than domain.MaxAmount.
func (a Amount) Units() (int64, error) {
	if !a.Valid || !a.Value.IsInteger() || !a.Value.IsPositive() {
		return 0, apperrors.ErrInvalidAmount
	}
	if a.Value.GreaterThan(decimal.NewFromInt(domain.MaxAmount)) {
		return 0, apperrors.ErrInvalidAmount
	}
	return a.Value.IntPart(), nil
}
