package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Agent ")
	assert.True(t, ok)
	assert.Equal(t, RoleAgent, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "active", "BLOCKED"} {
		_, ok := ParseStatus(s)
		assert.True(t, ok, s)
	}
	_, ok := ParseStatus("deleted")
	assert.False(t, ok)
}

func TestActivationBonus(t *testing.T) {
	assert.Equal(t, int64(10000), ActivationBonus(RoleAgent))
	assert.Equal(t, int64(40), ActivationBonus(RoleUser))
	assert.Equal(t, int64(40), ActivationBonus(RoleAdmin))
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusPending, StatusActive, true},
		{StatusPending, StatusBlocked, true},
		{StatusActive, StatusBlocked, true},
		{StatusBlocked, StatusActive, true},
		{StatusActive, StatusActive, true},
		{StatusActive, StatusPending, false},
		{StatusBlocked, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusActive, Status("frozen"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsActivationOnlyOnPendingEdge(t *testing.T) {
	assert.True(t, IsActivation(StatusPending, StatusActive))
	assert.False(t, IsActivation(StatusBlocked, StatusActive))
	assert.False(t, IsActivation(StatusActive, StatusActive))
	assert.False(t, IsActivation(StatusPending, StatusBlocked))
}

func TestAccountUpdateStampedAt(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, now, AccountUpdate{}.StampedAt(now))

	at := now.Add(-time.Hour)
	assert.Equal(t, at, AccountUpdate{At: at}.StampedAt(now))
}
