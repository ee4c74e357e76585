package account

import (
	"strings"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role determines what an account may do
type Role string

const (
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	return r == RolePartner || r == RoleAdmin
}

// Status represents the account lifecycle state
type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// PixKeyType identifies the kind of PIX key registered for payouts
type PixKeyType string

const (
	PixKeyCPF    PixKeyType = "cpf"
	PixKeyEmail  PixKeyType = "email"
	PixKeyPhone  PixKeyType = "phone"
	PixKeyRandom PixKeyType = "random"
)

// IsValid checks if the PIX key type is valid
func (t PixKeyType) IsValid() bool {
	switch t {
	case PixKeyCPF, PixKeyEmail, PixKeyPhone, PixKeyRandom:
		return true
	}
	return false
}

// FeeSchedule holds the per-account pricing applied to money movements.
// Percent values are expressed as percentages (2.0 means 2%).
type FeeSchedule struct {
	DepositPercent    decimal.Decimal
	DepositFixed      valueobject.Money
	WithdrawalPercent decimal.Decimal
	TransferPercent   decimal.Decimal
}

// DefaultFeeSchedule returns the pricing applied to new partner accounts
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		DepositPercent:    decimal.NewFromFloat(2.0),
		DepositFixed:      valueobject.NewMoneyBRLFromFloat(0.99),
		WithdrawalPercent: decimal.Zero,
		TransferPercent:   decimal.Zero,
	}
}

// Account is a partner (or admin) on the platform. It owns two balance
// buckets: available, fed by settled deposits and incoming transfers,
// and commission, fed by referral commissions. Both are spendable.
type Account struct {
	shared.BaseEntity

	Name         string
	Document     string // CPF, optional
	Code         string // unique login and referral code
	PasswordHash string
	Role         Role
	Status       Status

	AvailableBalance  valueobject.Money
	CommissionBalance valueobject.Money
	TotalVolumeMoved  valueobject.Money

	// ReferralSlotsGranted is a one-time unlock: 0 before the account
	// reaches the volume threshold, 1 forever after.
	ReferralSlotsGranted int
	ReferralSlotsUsed    int
	ReferrerID           *uuid.UUID

	Fees FeeSchedule

	PixKey     string
	PixKeyType PixKeyType
}

// NewAccount creates an active partner account with default pricing
// and zeroed balances
func NewAccount(name, code, passwordHash string, referrerID *uuid.UUID) (*Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	return &Account{
		BaseEntity:        shared.NewBaseEntity(),
		Name:              name,
		Code:              code,
		PasswordHash:      passwordHash,
		Role:              RolePartner,
		Status:            StatusActive,
		AvailableBalance:  valueobject.ZeroBRL(),
		CommissionBalance: valueobject.ZeroBRL(),
		TotalVolumeMoved:  valueobject.ZeroBRL(),
		ReferrerID:        referrerID,
		Fees:              DefaultFeeSchedule(),
	}, nil
}

// IsAdmin returns true for admin accounts
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsActive returns true if the account may operate
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// HasDocument returns true if a CPF is on file
func (a *Account) HasDocument() bool {
	return a.Document != ""
}

// TotalBalance returns available plus commission
func (a *Account) TotalBalance() valueobject.Money {
	return a.AvailableBalance.MustAdd(a.CommissionBalance)
}

// FreeReferralSlots returns how many referees can still register under
// this account's code. Admin codes are unlimited.
func (a *Account) FreeReferralSlots(slotsPerGrant int) int {
	if a.IsAdmin() {
		return -1
	}
	free := a.ReferralSlotsGranted*slotsPerGrant - a.ReferralSlotsUsed
	if free < 0 {
		return 0
	}
	return free
}

// CanRefer returns true if a new account may register under this code
func (a *Account) CanRefer(slotsPerGrant int) bool {
	return a.IsAdmin() || a.FreeReferralSlots(slotsPerGrant) > 0
}

// Block marks the account blocked
func (a *Account) Block() {
	a.Status = StatusBlocked
}

// Unblock reactivates the account
func (a *Account) Unblock() {
	a.Status = StatusActive
}

// SetPixKey updates the payout PIX key
func (a *Account) SetPixKey(key string, keyType PixKeyType) error {
	if key == "" {
		return shared.NewDomainError("INVALID_PIX_KEY", "PIX key cannot be empty")
	}
	if !keyType.IsValid() {
		return shared.NewDomainError("INVALID_PIX_KEY_TYPE", "Unknown PIX key type")
	}
	a.PixKey = key
	a.PixKeyType = keyType
	return nil
}
