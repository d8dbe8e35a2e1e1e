package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError maps err to its public status and code. Server-side failures are logged
// with the cause; everything else is logged as a warning.
func respondError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status, code, message := apperrors.Classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()), slog.String("code", code))
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.String("code", code))
	}
	c.JSON(status, dto.ErrorResponse{Error: message, Code: code})
}

// respondBindError reports a malformed request body or query.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request: " + err.Error(), Code: "VALIDATION_FAILED"})
}

// principal returns the authenticated caller or writes 401.
func principal(c *gin.Context) (string, bool) {
	p, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthenticated, "Principal missing from context")
		return "", false
	}
	return p.AccountID, true
}
