package dto

import (
	"time"

	"github.com/SscSPs/secure_pay/internal/core/domain"
)

// RegisterRequest is the public sign-up payload. Only user and agent roles are accepted.
type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Email        string `json:"email" binding:"required,email,max=254"`
	MobileNumber string `json:"mobileNumber" binding:"required,mobile"`
	PIN          string `json:"pin" binding:"required,pin"`
	Role         string `json:"role" binding:"required"`
}

// CreateAdminRequest is used by the bootstrap command.
type CreateAdminRequest struct {
	Name         string
	Email        string
	MobileNumber string
	PIN          string
}

// RegisterResponse tells the caller the account awaits approval.
type RegisterResponse struct {
	AccountID string        `json:"accountID"`
	Status    domain.Status `json:"status"`
	Message   string        `json:"message"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	AccountID    string        `json:"accountID"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	MobileNumber string        `json:"mobileNumber"`
	Role         domain.Role   `json:"role"`
	Status       domain.Status `json:"status"`
	Balance      int64         `json:"balance"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ToAccountResponse converts a domain account. The PIN hash is never copied.
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    acc.AccountID,
		Name:         acc.Name,
		Email:        acc.Email,
		MobileNumber: acc.MobileNumber,
		Role:         acc.Role,
		Status:       acc.Status,
		Balance:      acc.Balance,
		CreatedAt:    acc.CreatedAt,
		UpdatedAt:    acc.LastUpdatedAt,
	}
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// SearchAccountsParams adds the name query to ListAccountsParams.
type SearchAccountsParams struct {
	ListAccountsParams
	Name string `form:"name" binding:"required,max=100"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// ToListAccountsResponse converts a slice of domain accounts.
func ToListAccountsResponse(accounts []domain.Account, limit, offset int) ListAccountsResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return ListAccountsResponse{Accounts: out, Limit: limit, Offset: offset}
}

// SetStatusRequest is the admin status change payload.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BalanceResponse reports the caller's balance.
type BalanceResponse struct {
	AccountID string `json:"accountID"`
	Balance   int64  `json:"balance"`
}
