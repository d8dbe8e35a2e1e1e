package domain

import (
	"strings"
	"time"
)

// Role is the fixed capability class of an account, set at registration.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// ParseRole accepts only the closed set of roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAgent, RoleAdmin:
		return r, true
	}
	return "", false
}

// Status governs whether balance-affecting operations are permitted.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// ParseStatus accepts only the closed set of statuses.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusActive, StatusBlocked:
		return st, true
	}
	return "", false
}

// Activation bonus amounts in minor units.
const (
	AgentActivationBonus int64 = 10000
	UserActivationBonus  int64 = 40
)

// ActivationBonus returns the one-time credit granted on the pending -> active edge.
func ActivationBonus(role Role) int64 {
	if role == RoleAgent {
		return AgentActivationBonus
	}
	return UserActivationBonus
}

// CanTransitionTo reports whether an administrator may move an account from s to target.
// Nothing re-enters pending; staying in the same state is allowed and is a no-op.
func (s Status) CanTransitionTo(target Status) bool {
	switch target {
	case StatusActive, StatusBlocked:
		return s == StatusPending || s == StatusActive || s == StatusBlocked
	}
	return false
}

// IsActivation reports whether from -> to is the bonus-granting edge.
func IsActivation(from, to Status) bool {
	return from == StatusPending && to == StatusActive
}

// Account is a ledger participant. Balance is in minor currency units and is never
// negative after a committed operation.
type Account struct {
	AccountID    string `json:"accountID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	PINHash      string `json:"-"`
	Role         Role   `json:"role"`
	Status       Status `json:"status"`
	Balance      int64  `json:"balance"`
	AuditFields
}

// IsActive reports whether the account may move money.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// AccountCondition is the predicate of a conditional update. Zero values are wildcards.
type AccountCondition struct {
	Status     Status
	MinBalance int64
}

// AccountUpdate is the write half of a conditional update. At stamps last_updated_at;
// stores fall back to their own clock when it is zero.
type AccountUpdate struct {
	Status       Status
	BalanceDelta int64
	UpdatedBy    string
	At           time.Time
}

// StampedAt returns At, or now when At is unset.
func (u AccountUpdate) StampedAt(now time.Time) time.Time {
	if u.At.IsZero() {
		return now
	}
	return u.At
}

// AccountFilter narrows account listings.
type AccountFilter struct {
	NameContains  string
	IncludeAdmins bool
}

// Principal is the verified caller identity resolved by the access control gate.
type Principal struct {
	AccountID string
	Role      Role
}

// IsAdmin reports whether the principal carries the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
