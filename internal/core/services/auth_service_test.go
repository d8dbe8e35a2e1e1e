package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/SscSPs/secure_pay/internal/core/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "secure-pay",
		BcryptCost:        4,
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccountRepository)
	tokens := services.NewTokenService(testConfig())
	svc := services.NewAuthService(repo, plainHasher{}, tokens, services.RetryPolicy{MaxAttempts: 1})

	acc := activeAccount("a1", "01700000001", domain.RoleAgent, 0)
	acc.Status = domain.StatusPending
	acc.PINHash = "h:1234"
	repo.On("FindAccountByIdentifier", ctx, "a1@example.com").Return(acc, nil)
	repo.On("FindAccountByIdentifier", ctx, "01700000009").Return(nil, apperrors.ErrNotFound)

	t.Run("valid PIN issues role-bearing token", func(t *testing.T) {
		before := time.Now()
		resp, err := svc.Login(ctx, dto.LoginRequest{Identifier: " A1@Example.com ", PIN: "1234"})
		require.NoError(t, err)
		assert.Equal(t, "a1", resp.AccountID)
		assert.Equal(t, "agent", resp.Role)
		assert.InDelta(t, before.Add(time.Hour).Unix(), resp.ExpiresAt, 2)

		principal, err := tokens.ParseToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.Principal{AccountID: "a1", Role: domain.RoleAgent}, *principal)
	})

	t.Run("wrong PIN", func(t *testing.T) {
		_, err := svc.Login(ctx, dto.LoginRequest{Identifier: "a1@example.com", PIN: "0000"})
		assert.ErrorIs(t, err, apperrors.ErrSecretMismatch)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := svc.Login(ctx, dto.LoginRequest{Identifier: "017-0000-0009", PIN: "1234"})
		assert.ErrorIs(t, err, apperrors.ErrIdentityNotFound)
	})
}

func TestLoginWithVerifiedEmail(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAccountRepository)
	svc := services.NewAuthService(repo, plainHasher{}, services.NewTokenService(testConfig()), services.RetryPolicy{MaxAttempts: 1})

	repo.On("FindAccountByEmail", ctx, "a1@example.com").Return(activeAccount("a1", "01700000001", domain.RoleUser, 0), nil)
	repo.On("FindAccountByEmail", ctx, "stranger@example.com").Return(nil, apperrors.ErrNotFound)

	resp, err := svc.LoginWithVerifiedEmail(ctx, "A1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user", resp.Role)

	_, err = svc.LoginWithVerifiedEmail(ctx, "stranger@example.com")
	assert.ErrorIs(t, err, apperrors.ErrIdentityNotFound)
}

func TestParseTokenRejectsForeignSignature(t *testing.T) {
	other := testConfig()
	other.JWTSecret = "other-secret"
	token, _, err := services.NewTokenService(other).GenerateToken(activeAccount("a1", "01700000001", domain.RoleAdmin, 0))
	require.NoError(t, err)

	_, err = services.NewTokenService(testConfig()).ParseToken(token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestGoogleOAuthDisabledWithoutCredentials(t *testing.T) {
	assert.False(t, services.NewGoogleOAuthService(testConfig()).Enabled())

	cfg := testConfig()
	cfg.GoogleClientID = "id"
	cfg.GoogleClientSecret = "secret"
	assert.True(t, services.NewGoogleOAuthService(cfg).Enabled())
}
