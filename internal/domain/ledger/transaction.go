package ledger

import (
	"time"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle of a PIX deposit
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionPaid    TransactionStatus = "paid"
	TransactionExpired TransactionStatus = "expired"
	TransactionFailed  TransactionStatus = "failed"
)

// IsValid checks if the status is valid
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionPending, TransactionPaid, TransactionExpired, TransactionFailed:
		return true
	}
	return false
}

// IsFinal returns true if the status cannot change anymore
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionPaid || s == TransactionExpired || s == TransactionFailed
}

// NetAmount computes the amount credited to the depositor for a gross
// charge under the given pricing: gross minus (gross * percent / 100
// + fixed). All arithmetic is exact decimal; the result is rounded to
// cents only when persisted.
func NetAmount(gross valueobject.Money, percent decimal.Decimal, fixed valueobject.Money) valueobject.Money {
	fee := gross.CalculatePercentage(percent).MustAdd(fixed)
	return gross.MustSubtract(fee)
}

// Transaction is a PIX deposit charge. The fee terms are snapshotted
// at creation so later pricing changes never alter a settled amount.
type Transaction struct {
	shared.BaseEntity

	AccountID   uuid.UUID
	ProcessorID string // id assigned by the payment processor
	CustomID    string // our id echoed back by processor callbacks

	GrossAmount valueobject.Money
	FeePercent  decimal.Decimal
	FeeFixed    valueobject.Money
	NetAmount   valueobject.Money

	Status TransactionStatus
	PaidAt *time.Time

	QRCode       string
	QRCodeBase64 string
	PixCopyPaste string
}

// NewTransaction creates a pending deposit charge, computing the net
// amount from the account's pricing
func NewTransaction(accountID uuid.UUID, gross valueobject.Money, feePercent decimal.Decimal, feeFixed valueobject.Money) (*Transaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	if !gross.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deposit amount must be positive")
	}
	if feePercent.IsNegative() || feeFixed.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEES", "Fee terms cannot be negative")
	}
	net := NetAmount(gross, feePercent, feeFixed)
	if net.IsNegative() || net.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Deposit amount does not cover fees")
	}
	base := shared.NewBaseEntity()
	return &Transaction{
		BaseEntity:  base,
		AccountID:   accountID,
		CustomID:    base.ID.String(),
		GrossAmount: gross,
		FeePercent:  feePercent,
		FeeFixed:    feeFixed,
		NetAmount:   net,
		Status:      TransactionPending,
	}, nil
}

// AttachCharge records the processor's charge identifiers and QR payload
func (t *Transaction) AttachCharge(processorID, qrCode, qrCodeBase64, pixCopyPaste string) error {
	if processorID == "" {
		return shared.NewDomainError("INVALID_PROCESSOR_ID", "Processor transaction ID is required")
	}
	t.ProcessorID = processorID
	t.QRCode = qrCode
	t.QRCodeBase64 = qrCodeBase64
	t.PixCopyPaste = pixCopyPaste
	return nil
}

// IsPending returns true while the charge awaits payment
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionPending
}

// FeeTaken returns gross minus net
func (t *Transaction) FeeTaken() valueobject.Money {
	return t.GrossAmount.MustSubtract(t.NetAmount)
}
