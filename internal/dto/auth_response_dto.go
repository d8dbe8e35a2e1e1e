package dto

// LoginRequest accepts either an email or a mobile number as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	PIN        string `json:"pin" binding:"required"`
}

// AuthResponse represents the response for a successful login.
type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	AccountID string `json:"accountID"`
	Role      string `json:"role"`
}

// ExchangeCodeRequest carries a Google authorization code.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
