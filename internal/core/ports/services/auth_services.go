package services

import (
	"context"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/SscSPs/secure_pay/internal/dto"
	"golang.org/x/oauth2"
)

// SecretHasher is a one-way salted hash with verification.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret string, hash string) bool
}

// TokenSvc issues and verifies bearer credentials carrying {accountId, role}.
type TokenSvc interface {
	GenerateToken(account *domain.Account) (string, int64, error)
	ParseToken(tokenString string) (*domain.Principal, error)
}

// AuthSvcFacade verifies login identifiers and secrets.
type AuthSvcFacade interface {
	// Login matches identifier against email or mobile number and verifies pin.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	// LoginWithVerifiedEmail issues a token for the existing account owning email.
	LoginWithVerifiedEmail(ctx context.Context, email string) (*dto.AuthResponse, error)
}

// GoogleOAuthSvc wraps the Google OAuth 2.0 code exchange.
type GoogleOAuthSvc interface {
	Enabled() bool
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	VerifiedEmail(ctx context.Context, token *oauth2.Token) (string, error)
}
