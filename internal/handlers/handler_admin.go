package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/middleware"
	"github.com/SscSPs/secure_pay/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// adminHandler serves administrator-only account management.
type adminHandler struct {
	accountService   portssvc.AccountSvcFacade
	lifecycleService portssvc.LifecycleSvcFacade
}

func registerAdminRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &adminHandler{accountService: services.Account, lifecycleService: services.Lifecycle}

	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/accounts", h.listAccounts)
		admin.GET("/accounts/search", h.searchAccounts)
		admin.POST("/accounts/:accountID/status", h.setStatus)
	}
}

// listAccounts godoc
// @Summary List non-admin accounts
// @Tags admin
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/accounts [get]
func (h *adminHandler) listAccounts(c *gin.Context) {
	actor, _ := middleware.GetPrincipalFromContext(c)
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), actor, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	limit, offset := pagination.Clamp(params.Limit, params.Offset)
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts, limit, offset))
}

// searchAccounts godoc
// @Summary Search non-admin accounts by name
// @Description Case-insensitive substring match. The query is literal text.
// @Tags admin
// @Produce json
// @Param name query string true "Name fragment"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/accounts/search [get]
func (h *adminHandler) searchAccounts(c *gin.Context) {
	actor, _ := middleware.GetPrincipalFromContext(c)
	var params dto.SearchAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	accounts, err := h.accountService.SearchAccountsByName(c.Request.Context(), actor, params.Name, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to search accounts")
		return
	}
	limit, offset := pagination.Clamp(params.Limit, params.Offset)
	c.JSON(http.StatusOK, dto.ToListAccountsResponse(accounts, limit, offset))
}

// setStatus godoc
// @Summary Change an account's status
// @Description Moves a user or agent account to active or blocked. The first activation credits the role's bonus once.
// @Tags admin
// @Accept json
// @Produce json
// @Param accountID path string true "Account ID"
// @Param request body dto.SetStatusRequest true "Target status"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /admin/accounts/{accountID}/status [post]
func (h *adminHandler) setStatus(c *gin.Context) {
	actor, _ := middleware.GetPrincipalFromContext(c)
	var req dto.SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	account, err := h.lifecycleService.SetStatus(c.Request.Context(), actor, c.Param("accountID"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to change account status")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}
