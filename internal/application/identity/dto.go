package identity

import (
	"time"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// RegisterInput contains the data needed to register a partner account
type RegisterInput struct {
	Name         string
	Password     string
	ReferralCode string
	Document     string
}

// LoginInput contains login credentials
type LoginInput struct {
	Code     string
	Password string
}

// AccountResponse is the public shape of an account
type AccountResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	Document          string    `json:"document,omitempty"`
	AvailableBalance  string    `json:"available_balance"`
	CommissionBalance string    `json:"commission_balance"`
	TotalVolumeMoved  string    `json:"total_volume_moved"`
	FreeReferralSlots int       `json:"free_referral_slots"`
	PixKey            string    `json:"pix_key,omitempty"`
	PixKeyType        string    `json:"pix_key_type,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// AuthResult bundles the account with its token pair
type AuthResult struct {
	Account AccountResponse `json:"account"`
	Tokens  *auth.TokenPair `json:"tokens"`
}

// ToAccountResponse converts a domain account to its public shape
func ToAccountResponse(a *account.Account, slotsPerGrant int) AccountResponse {
	return AccountResponse{
		ID:                a.ID,
		Name:              a.Name,
		Code:              a.Code,
		Role:              string(a.Role),
		Status:            string(a.Status),
		Document:          a.Document,
		AvailableBalance:  a.AvailableBalance.Amount().Round(2).String(),
		CommissionBalance: a.CommissionBalance.Amount().Round(2).String(),
		TotalVolumeMoved:  a.TotalVolumeMoved.Amount().Round(2).String(),
		FreeReferralSlots: a.FreeReferralSlots(slotsPerGrant),
		PixKey:            a.PixKey,
		PixKeyType:        string(a.PixKeyType),
		CreatedAt:         a.CreatedAt,
	}
}
