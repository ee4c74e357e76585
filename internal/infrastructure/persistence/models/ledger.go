package models

import (
	"time"

	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for PIX deposit charges
type TransactionModel struct {
	BaseModel
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProcessorID string    `gorm:"type:varchar(100);index"`
	CustomID    string    `gorm:"type:varchar(100);not null;uniqueIndex"`

	GrossAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	FeePercent  decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	FeeFixed    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	Status string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaidAt *time.Time `gorm:"index"`

	QRCode       string `gorm:"type:text"`
	QRCodeBase64 string `gorm:"type:text"`
	PixCopyPaste string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		BaseEntity:   m.BaseModel.ToDomain(),
		AccountID:    m.AccountID,
		ProcessorID:  m.ProcessorID,
		CustomID:     m.CustomID,
		GrossAmount:  valueobject.NewMoneyBRL(m.GrossAmount),
		FeePercent:   m.FeePercent,
		FeeFixed:     valueobject.NewMoneyBRL(m.FeeFixed),
		NetAmount:    valueobject.NewMoneyBRL(m.NetAmount),
		Status:       ledger.TransactionStatus(m.Status),
		PaidAt:       m.PaidAt,
		QRCode:       m.QRCode,
		QRCodeBase64: m.QRCodeBase64,
		PixCopyPaste: m.PixCopyPaste,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.AccountID = t.AccountID
	m.ProcessorID = t.ProcessorID
	m.CustomID = t.CustomID
	m.GrossAmount = t.GrossAmount.Amount().Round(2)
	m.FeePercent = t.FeePercent
	m.FeeFixed = t.FeeFixed.Amount().Round(2)
	m.NetAmount = t.NetAmount.Amount().Round(2)
	m.Status = string(t.Status)
	m.PaidAt = t.PaidAt
	m.QRCode = t.QRCode
	m.QRCodeBase64 = t.QRCodeBase64
	m.PixCopyPaste = t.PixCopyPaste
}

// CommissionModel is the persistence model for referral commissions
type CommissionModel struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ReferrerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	RefereeID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Percent       decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'credited'"`
}

// TableName returns the table name for GORM
func (CommissionModel) TableName() string {
	return "commissions"
}

// ToDomain converts the persistence model to a domain Commission
func (m *CommissionModel) ToDomain() *ledger.Commission {
	return &ledger.Commission{
		BaseEntity:    m.BaseModel.ToDomain(),
		TransactionID: m.TransactionID,
		ReferrerID:    m.ReferrerID,
		RefereeID:     m.RefereeID,
		Amount:        valueobject.NewMoneyBRL(m.Amount),
		Percent:       m.Percent,
		Status:        ledger.CommissionStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Commission
func (m *CommissionModel) FromDomain(c *ledger.Commission) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TransactionID = c.TransactionID
	m.ReferrerID = c.ReferrerID
	m.RefereeID = c.RefereeID
	m.Amount = c.Amount.Amount().Round(2)
	m.Percent = c.Percent
	m.Status = string(c.Status)
}

// WithdrawalModel is the persistence model for payout requests
type WithdrawalModel struct {
	BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`

	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Fee           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalWithheld decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	DrawnFromAvailable  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DrawnFromCommission decimal.Decimal `gorm:"type:decimal(18,2);not null"`

	PixKey     string `gorm:"type:varchar(200);not null"`
	PixKeyType string `gorm:"type:varchar(20);not null"`

	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt *time.Time
}

// TableName returns the table name for GORM
func (WithdrawalModel) TableName() string {
	return "withdrawals"
}

// ToDomain converts the persistence model to a domain Withdrawal
func (m *WithdrawalModel) ToDomain() *ledger.Withdrawal {
	return &ledger.Withdrawal{
		BaseEntity:          m.BaseModel.ToDomain(),
		AccountID:           m.AccountID,
		Amount:              valueobject.NewMoneyBRL(m.Amount),
		Fee:                 valueobject.NewMoneyBRL(m.Fee),
		TotalWithheld:       valueobject.NewMoneyBRL(m.TotalWithheld),
		DrawnFromAvailable:  valueobject.NewMoneyBRL(m.DrawnFromAvailable),
		DrawnFromCommission: valueobject.NewMoneyBRL(m.DrawnFromCommission),
		PixKey:              m.PixKey,
		PixKeyType:          m.PixKeyType,
		Status:              ledger.WithdrawalStatus(m.Status),
		ReviewedBy:          m.ReviewedBy,
		ReviewedAt:          m.ReviewedAt,
	}
}

// FromDomain populates the persistence model from a domain Withdrawal
func (m *WithdrawalModel) FromDomain(w *ledger.Withdrawal) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.AccountID = w.AccountID
	m.Amount = w.Amount.Amount().Round(2)
	m.Fee = w.Fee.Amount().Round(2)
	m.TotalWithheld = w.TotalWithheld.Amount().Round(2)
	m.DrawnFromAvailable = w.DrawnFromAvailable.Amount().Round(2)
	m.DrawnFromCommission = w.DrawnFromCommission.Amount().Round(2)
	m.PixKey = w.PixKey
	m.PixKeyType = w.PixKeyType
	m.Status = string(w.Status)
	m.ReviewedBy = w.ReviewedBy
	m.ReviewedAt = w.ReviewedAt
}

// TransferModel is the persistence model for internal transfers
type TransferModel struct {
	BaseModel
	SenderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	RecipientID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Fee         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (TransferModel) TableName() string {
	return "transfers"
}

// ToDomain converts the persistence model to a domain Transfer
func (m *TransferModel) ToDomain() *ledger.Transfer {
	return &ledger.Transfer{
		BaseEntity:  m.BaseModel.ToDomain(),
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Amount:      valueobject.NewMoneyBRL(m.Amount),
		Fee:         valueobject.NewMoneyBRL(m.Fee),
	}
}

// FromDomain populates the persistence model from a domain Transfer
func (m *TransferModel) FromDomain(t *ledger.Transfer) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.SenderID = t.SenderID
	m.RecipientID = t.RecipientID
	m.Amount = t.Amount.Amount().Round(2)
	m.Fee = t.Fee.Amount().Round(2)
}
