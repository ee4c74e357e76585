package models

import (
	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for partner and admin accounts
type AccountModel struct {
	BaseModel
	Name         string `gorm:"type:varchar(200);not null"`
	Document     string `gorm:"type:varchar(14);index"`
	Code         string `gorm:"type:varchar(20);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Role         string `gorm:"type:varchar(20);not null;default:'partner';index"`
	Status       string `gorm:"type:varchar(20);not null;default:'active';index"`

	AvailableBalance  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CommissionBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalVolumeMoved  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	ReferralSlotsGranted int        `gorm:"not null;default:0"`
	ReferralSlotsUsed    int        `gorm:"not null;default:0"`
	ReferrerID           *uuid.UUID `gorm:"type:uuid;index"`

	FeePercent           decimal.Decimal `gorm:"type:decimal(8,4);not null;default:2.0"`
	FeeFixed             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0.99"`
	WithdrawalFeePercent decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	TransferFeePercent   decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`

	PixKey     string `gorm:"type:varchar(200)"`
	PixKeyType string `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *account.Account {
	return &account.Account{
		BaseEntity:           m.BaseModel.ToDomain(),
		Name:                 m.Name,
		Document:             m.Document,
		Code:                 m.Code,
		PasswordHash:         m.PasswordHash,
		Role:                 account.Role(m.Role),
		Status:               account.Status(m.Status),
		AvailableBalance:     valueobject.NewMoneyBRL(m.AvailableBalance),
		CommissionBalance:    valueobject.NewMoneyBRL(m.CommissionBalance),
		TotalVolumeMoved:     valueobject.NewMoneyBRL(m.TotalVolumeMoved),
		ReferralSlotsGranted: m.ReferralSlotsGranted,
		ReferralSlotsUsed:    m.ReferralSlotsUsed,
		ReferrerID:           m.ReferrerID,
		Fees: account.FeeSchedule{
			DepositPercent:    m.FeePercent,
			DepositFixed:      valueobject.NewMoneyBRL(m.FeeFixed),
			WithdrawalPercent: m.WithdrawalFeePercent,
			TransferPercent:   m.TransferFeePercent,
		},
		PixKey:     m.PixKey,
		PixKeyType: account.PixKeyType(m.PixKeyType),
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *account.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Name = a.Name
	m.Document = a.Document
	m.Code = a.Code
	m.PasswordHash = a.PasswordHash
	m.Role = string(a.Role)
	m.Status = string(a.Status)
	m.AvailableBalance = a.AvailableBalance.Amount().Round(2)
	m.CommissionBalance = a.CommissionBalance.Amount().Round(2)
	m.TotalVolumeMoved = a.TotalVolumeMoved.Amount().Round(2)
	m.ReferralSlotsGranted = a.ReferralSlotsGranted
	m.ReferralSlotsUsed = a.ReferralSlotsUsed
	m.ReferrerID = a.ReferrerID
	m.FeePercent = a.Fees.DepositPercent
	m.FeeFixed = a.Fees.DepositFixed.Amount().Round(2)
	m.WithdrawalFeePercent = a.Fees.WithdrawalPercent
	m.TransferFeePercent = a.Fees.TransferPercent
	m.PixKey = a.PixKey
	m.PixKeyType = string(a.PixKeyType)
}
