package handler

import (
	"time"

	"github.com/Lion1208/fastpay/internal/application/identity"
)

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for partner registration
type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=120"`
	Password     string `json:"password" binding:"required,min=6,max=128"`
	ReferralCode string `json:"referral_code" binding:"required,min=4,max=16"`
	Document     string `json:"document" binding:"omitempty,max=18"`
}

// LoginRequest represents the request body for partner login
type LoginRequest struct {
	Code     string `json:"code" binding:"required,min=4,max=16"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// =====================
// Auth Response DTOs
// =====================

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// AuthResponse represents the response body for register and login
type AuthResponse struct {
	Token   TokenResponse            `json:"token"`
	Account identity.AccountResponse `json:"account"`
}
