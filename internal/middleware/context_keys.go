package middleware

import (
	"context"

	"github.com/SscSPs/secure_pay/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// principalKey is the key used to store the verified caller in the request context.
const principalKey = contextKey("principal")

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipalFromContext retrieves the authenticated caller from the Gin context.
// It returns the principal and a boolean indicating if it was found.
func GetPrincipalFromContext(c *gin.Context) (domain.Principal, bool) {
	p, ok := c.Request.Context().Value(principalKey).(domain.Principal)
	if !ok || p.AccountID == "" {
		return domain.Principal{}, false
	}
	return p, true
}
