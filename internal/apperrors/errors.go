package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Store-level conditions. Repositories return these; services translate them into
// the ledger error kinds below.
var (
	// ErrNotFound indicates that a requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrPredicateFailed indicates that a conditional update found the stored document
	// in a state that did not satisfy its predicate, so nothing was written.
	ErrPredicateFailed = errors.New("update predicate not satisfied")

	// ErrValidation indicates that input data failed validation checks.
	ErrValidation = errors.New("validation error")
)

// Ledger error kinds surfaced to callers.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("operation not permitted for this role")
	ErrAccountNotFound     = errors.New("account not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrDuplicateIdentity   = errors.New("an account with this email or mobile number already exists")
	ErrInvalidAmount       = errors.New("amount must be a positive whole number")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidStatus       = errors.New("invalid account status")
	ErrSecretMismatch      = errors.New("invalid PIN")
	ErrIdentityNotFound    = errors.New("no account matches this identifier")
	ErrStoreUnavailable    = errors.New("account store temporarily unavailable")
	ErrAccountInactive     = errors.New("account is not active")
	ErrSameAccount         = errors.New("cannot send money to your own account")
	ErrInvalidRole         = errors.New("invalid account role")
)

// AppError carries an HTTP status hint alongside a wrapped cause.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unavailable wraps a transient infrastructure failure so that errors.Is(err, ErrStoreUnavailable) holds.
func Unavailable(message string, cause error) error {
	return NewAppError(http.StatusServiceUnavailable, message, fmt.Errorf("%w: %v", ErrStoreUnavailable, cause))
}

// IsRetryable reports whether err is the only kind eligible for transparent retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// kindInfo describes how an error kind is presented to API callers.
type kindInfo struct {
	err    error
	status int
	code   string
}

// kinds is ordered: the first match wins.
var kinds = []kindInfo{
	{ErrUnauthenticated, http.StatusUnauthorized, "UNAUTHENTICATED"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
	{ErrRecipientNotFound, http.StatusNotFound, "RECIPIENT_NOT_FOUND"},
	{ErrDuplicateIdentity, http.StatusConflict, "DUPLICATE_IDENTITY"},
	{ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{ErrInsufficientBalance, http.StatusBadRequest, "INSUFFICIENT_BALANCE"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrSecretMismatch, http.StatusUnauthorized, "SECRET_MISMATCH"},
	{ErrIdentityNotFound, http.StatusUnauthorized, "IDENTITY_NOT_FOUND"},
	{ErrAccountInactive, http.StatusForbidden, "ACCOUNT_INACTIVE"},
	{ErrSameAccount, http.StatusBadRequest, "SAME_ACCOUNT"},
	{ErrInvalidRole, http.StatusBadRequest, "INVALID_ROLE"},
	{ErrValidation, http.StatusBadRequest, "VALIDATION_FAILED"},
	{ErrStoreUnavailable, http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrDuplicate, http.StatusConflict, "DUPLICATE"},
}

// Classify returns the HTTP status, machine code and a caller-safe message for err.
// Unknown errors map to 500 with a generic message so internals never leak.
func Classify(err error) (status int, code string, message string) {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.status, k.code, k.err.Error()
		}
	}
	return http.StatusInternalServerError, "INTERNAL", "internal server error"
}
