package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	portsrepo "github.com/SscSPs/secure_pay/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/platform/config"
	"github.com/SscSPs/secure_pay/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// tokenService issues signed access tokens carrying the account id and role.
type tokenService struct {
	secret string
	expiry time.Duration
	issuer string
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvc {
	return &tokenService{
		secret: cfg.JWTSecret,
		expiry: cfg.JWTExpiryDuration,
		issuer: cfg.JWTIssuer,
	}
}

// GenerateToken returns the signed token and its expiry as Unix seconds.
func (s *tokenService) GenerateToken(account *domain.Account) (string, int64, error) {
	token, expiresAt, err := utils.GenerateJWT(account.AccountID, account.Role, s.secret, s.expiry, s.issuer)
	if err != nil {
		return "", 0, err
	}
	return token, expiresAt.Unix(), nil
}

func (s *tokenService) ParseToken(tokenString string) (*domain.Principal, error) {
	principal, err := utils.ParseAndValidateJWT(tokenString, s.secret, s.issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthenticated, err)
	}
	return principal, nil
}

// authService verifies PIN logins against the account store.
type authService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	hasher      portssvc.SecretHasher
	tokens      portssvc.TokenSvc
	retry       RetryPolicy
}

// NewAuthService creates the login service.
func NewAuthService(repo portsrepo.AccountReader, hasher portssvc.SecretHasher, tokens portssvc.TokenSvc, retry RetryPolicy) portssvc.AuthSvcFacade {
	return &authService{
		accountRepo: repo,
		hasher:      hasher,
		tokens:      tokens,
		retry:       retry,
	}
}

var _ portssvc.AuthSvcFacade = (*authService)(nil)

// Login matches the identifier against email or mobile number. Account status does not
// gate login; balance-moving operations check it themselves.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	identifier := utils.NormalizeIdentifier(req.Identifier)
	if identifier == "" {
		return nil, apperrors.ErrIdentityNotFound
	}
	account, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByIdentifier(ctx, identifier)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, "Login for unknown identifier")
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, err
	}
	if !s.hasher.Verify(req.PIN, account.PINHash) {
		s.LogWarn(ctx, "Login with wrong PIN", slog.String("account_id", account.AccountID))
		return nil, apperrors.ErrSecretMismatch
	}
	return s.issue(ctx, account)
}

func (s *authService) LoginWithVerifiedEmail(ctx context.Context, email string) (*dto.AuthResponse, error) {
	account, err := withStoreRetry(ctx, s.retry, func(ctx context.Context) (*domain.Account, error) {
		return s.accountRepo.FindAccountByEmail(ctx, utils.NormalizeEmail(email))
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, err
	}
	return s.issue(ctx, account)
}

func (s *authService) issue(ctx context.Context, account *domain.Account) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(account)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign access token", slog.String("account_id", account.AccountID))
		return nil, err
	}
	s.LogInfo(ctx, "Login succeeded", slog.String("account_id", account.AccountID))
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		AccountID: account.AccountID,
		Role:      string(account.Role),
	}, nil
}

// googleOAuthService exchanges Google authorization codes for verified email addresses.
type googleOAuthService struct {
	clientID     string
	oauth2Config *oauth2.Config
}

// NewGoogleOAuthService creates a new instance of googleOAuthService.
func NewGoogleOAuthService(cfg *config.Config) portssvc.GoogleOAuthSvc {
	return &googleOAuthService{
		clientID: cfg.GoogleClientID,
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "https://www.googleapis.com/auth/userinfo.email"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (s *googleOAuthService) Enabled() bool {
	return s.clientID != "" && s.oauth2Config.ClientSecret != ""
}

// ExchangeCode exchanges an OAuth authorization code for a token.
func (s *googleOAuthService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange oauth code: %v", apperrors.ErrUnauthenticated, err)
	}
	return token, nil
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

// VerifiedEmail prefers the signed ID token and falls back to the userinfo endpoint.
func (s *googleOAuthService) VerifiedEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		payload, err := idtoken.Validate(ctx, raw, s.clientID)
		if err != nil {
			return "", fmt.Errorf("%w: google ID token validation failed: %v", apperrors.ErrUnauthenticated, err)
		}
		email, _ := payload.Claims["email"].(string)
		verified, _ := payload.Claims["email_verified"].(bool)
		if email == "" || !verified {
			return "", fmt.Errorf("%w: google account email is not verified", apperrors.ErrUnauthenticated)
		}
		return email, nil
	}

	client := s.oauth2Config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google api returned non-200 status for userinfo: %s", resp.Status)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("failed to decode user info from google: %w", err)
	}
	if strings.TrimSpace(info.Email) == "" || !info.VerifiedEmail {
		return "", fmt.Errorf("%w: google account email is not verified", apperrors.ErrUnauthenticated)
	}
	return info.Email, nil
}
