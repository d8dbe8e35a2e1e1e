package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
)

// authHandler handles registration and PIN login.
type authHandler struct {
	accountService portssvc.AccountSvcFacade
	authService    portssvc.AuthSvcFacade
}

// registerAuthRoutes sets up the public authentication routes. loginLimiter may be nil.
func registerAuthRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, loginLimiter *limiter.Limiter) {
	h := &authHandler{accountService: services.Account, authService: services.Auth}

	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.register)
		if loginLimiter != nil {
			auth.POST("/login", middleware.RateLimit(loginLimiter), h.login)
		} else {
			auth.POST("/login", h.login)
		}
	}
}

// register godoc
// @Summary Register a new account
// @Description Creates a pending user or agent account with zero balance. An administrator must activate it.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "Registration details"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email or mobile number already registered"
// @Router /auth/register [post]
func (h *authHandler) register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to register account")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account registered", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.RegisterResponse{
		AccountID: account.AccountID,
		Status:    account.Status,
		Message:   "Registration successful. Awaiting administrator approval.",
	})
}

// login godoc
// @Summary Log in with email or mobile number and PIN
// @Description Returns a bearer token carrying the account id and role, valid for one hour.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}
