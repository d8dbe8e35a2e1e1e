package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/dto"
	"github.com/SscSPs/secure_pay/internal/middleware"
	"github.com/SscSPs/secure_pay/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry money movements safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// accountHandler serves the authenticated caller's own account.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

// registerAccountRoutes registers routes under /me. The group must already be authenticated.
func registerAccountRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &accountHandler{accountService: services.Account, ledgerService: services.Ledger}

	me := rg.Group("/me")
	{
		me.GET("", h.getAccount)
		me.GET("/balance", h.getBalance)
		me.GET("/entries", h.listEntries)
		me.POST("/send-money", h.sendMoney)
		me.POST("/cash-out", h.cashOut)
	}
}

// getAccount godoc
// @Summary Get the caller's account
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	accountID, ok := principal(c)
	if !ok {
		return
	}
	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getBalance godoc
// @Summary Get the caller's balance
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.BalanceResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /me/balance [get]
func (h *accountHandler) getBalance(c *gin.Context) {
	accountID, ok := principal(c)
	if !ok {
		return
	}
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to get balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Balance: balance})
}

// listEntries godoc
// @Summary List the caller's ledger entries
// @Tags accounts
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /me/entries [get]
func (h *accountHandler) listEntries(c *gin.Context) {
	accountID, ok := principal(c)
	if !ok {
		return
	}
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	entries, err := h.ledgerService.ListEntries(c.Request.Context(), accountID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "Failed to list ledger entries")
		return
	}
	limit, offset := pagination.Clamp(params.Limit, params.Offset)
	c.JSON(http.StatusOK, dto.ToListEntriesResponse(entries, accountID, limit, offset))
}

// sendMoney godoc
// @Summary Send money to another account
// @Description Debits the caller and credits the active account owning recipientMobile in one atomic step.
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client-chosen key; a repeated key returns the original entry"
// @Param request body dto.SendMoneyRequest true "Recipient and amount in minor units"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /me/send-money [post]
func (h *accountHandler) sendMoney(c *gin.Context) {
	accountID, ok := principal(c)
	if !ok {
		return
	}
	var req dto.SendMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	amount, err := req.Amount.Units()
	if err != nil {
		respondError(c, err, "Invalid transfer amount")
		return
	}

	entry, err := h.ledgerService.Transfer(c.Request.Context(), accountID, req.RecipientMobile, amount, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		respondError(c, err, "Transfer failed")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Transfer accepted", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(entry, accountID))
}

// cashOut godoc
// @Summary Cash out from the caller's account
// @Tags transactions
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Client-chosen key; a repeated key returns the original entry"
// @Param request body dto.CashOutRequest true "Amount in minor units"
// @Success 200 {object} dto.LedgerEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /me/cash-out [post]
func (h *accountHandler) cashOut(c *gin.Context) {
	accountID, ok := principal(c)
	if !ok {
		return
	}
	var req dto.CashOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	amount, err := req.Amount.Units()
	if err != nil {
		respondError(c, err, "Invalid cash-out amount")
		return
	}

	entry, err := h.ledgerService.CashOut(c.Request.Context(), accountID, amount, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		respondError(c, err, "Cash-out failed")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerEntryResponse(entry, accountID))
}
