package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"insufficient balance", ErrInsufficientBalance, http.StatusBadRequest, "INSUFFICIENT_BALANCE"},
		{"wrapped recipient", fmt.Errorf("transfer: %w", ErrRecipientNotFound), http.StatusNotFound, "RECIPIENT_NOT_FOUND"},
		{"duplicate identity", ErrDuplicateIdentity, http.StatusConflict, "DUPLICATE_IDENTITY"},
		{"store unavailable via AppError", Unavailable("query failed", errors.New("conn reset")), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := Classify(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestClassifyDoesNotLeakCause(t *testing.T) {
	_, _, msg := Classify(fmt.Errorf("%w: secret-pin-1234", ErrSecretMismatch))
	assert.Equal(t, ErrSecretMismatch.Error(), msg)

	_, _, msg = Classify(errors.New("pq: relation accounts does not exist"))
	assert.Equal(t, "internal server error", msg)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Unavailable("ping failed", errors.New("timeout"))))
	assert.False(t, IsRetryable(ErrInsufficientBalance))
	assert.False(t, IsRetryable(NewAppError(http.StatusInternalServerError, "failed", ErrDuplicate)))
}

func TestAppErrorUnwrap(t *testing.T) {
	appErr := NewAppError(http.StatusInternalServerError, "failed to begin transaction", ErrNotFound)
	assert.ErrorIs(t, appErr, ErrNotFound)
	assert.Contains(t, appErr.Error(), "failed to begin transaction")

	bare := NewAppError(http.StatusBadRequest, "bad input", nil)
	assert.Equal(t, "bad input", bare.Error())
}
