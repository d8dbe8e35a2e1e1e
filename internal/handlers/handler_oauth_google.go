package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/gin-gonic/gin"
)

// googleOAuthHandler logs existing accounts in with a verified Google email.
type googleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthSvc
	authService        portssvc.AuthSvcFacade
}

func registerGoogleOAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	if services.Google == nil || !services.Google.Enabled() {
		return
	}
	h := &googleOAuthHandler{googleOAuthService: services.Google, authService: services.Auth}
	rg.POST("/auth/google/exchange-code", h.exchangeCode)
}

// exchangeCode godoc
// @Summary Exchange a Google authorization code for an access token
// @Description Validates the Google ID token and logs in the account registered under the verified email. Accounts are never created here.
// @Tags auth
// @Accept json
// @Produce json
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/google/exchange-code [post]
func (h *googleOAuthHandler) exchangeCode(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	token, err := h.googleOAuthService.ExchangeCode(ctx, req.Code)
	if err != nil {
		respondError(c, err, "Failed to exchange authorization code with Google")
		return
	}
	email, err := h.googleOAuthService.VerifiedEmail(ctx, token)
	if err != nil {
		respondError(c, err, "Failed to verify Google identity")
		return
	}

	resp, err := h.authService.LoginWithVerifiedEmail(ctx, email)
	if err != nil {
		respondError(c, err, "Google login failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}
