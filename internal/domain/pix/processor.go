package pix

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// Charge creation errors
	ErrChargeInvalidCustomID = errors.New("pix: invalid custom ID")
	ErrChargeInvalidAmount   = errors.New("pix: invalid charge amount")

	// Charge query errors
	ErrChargeNotFound        = errors.New("pix: charge not found")
	ErrChargeInvalidQuery    = errors.New("pix: processor charge ID is required")
	ErrProcessorUnavailable  = errors.New("pix: processor temporarily unavailable")
	ErrProcessorRequest      = errors.New("pix: processor request failed")
	ErrProcessorResponse     = errors.New("pix: invalid processor response")
	ErrInvalidWebhookPayload = errors.New("pix: invalid webhook payload")
)

// ChargeStatus represents the status of a charge at the processor
type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "PENDING"
	ChargeStatusPaid    ChargeStatus = "PAID"
	ChargeStatusExpired ChargeStatus = "EXPIRED"
	ChargeStatusFailed  ChargeStatus = "FAILED"
)

// IsValid returns true if the status is valid
func (s ChargeStatus) IsValid() bool {
	switch s {
	case ChargeStatusPending, ChargeStatusPaid, ChargeStatusExpired, ChargeStatusFailed:
		return true
	default:
		return false
	}
}

// IsFinal returns true if the status is a terminal state
func (s ChargeStatus) IsFinal() bool {
	return s == ChargeStatusPaid || s == ChargeStatusExpired || s == ChargeStatusFailed
}

// IsPaid returns true if the charge was paid
func (s ChargeStatus) IsPaid() bool {
	return s == ChargeStatusPaid
}

// String returns the string representation of ChargeStatus
func (s ChargeStatus) String() string {
	return string(s)
}

// CreateChargeRequest represents a request to create a PIX charge
type CreateChargeRequest struct {
	// CustomID is our internal transaction ID, echoed back in webhooks
	CustomID string
	// Amount is the gross charge amount in BRL
	Amount decimal.Decimal
	// PayerName is the expected payer's name, when known
	PayerName string
	// PayerDocument is the expected payer's CPF, when known
	PayerDocument string
	// ExpiresIn is how long the charge stays payable
	ExpiresIn time.Duration
}

// Validate validates the create charge request
func (r *CreateChargeRequest) Validate() error {
	if r.CustomID == "" {
		return ErrChargeInvalidCustomID
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrChargeInvalidAmount
	}
	return nil
}

// CreateChargeResponse represents the processor's answer to a new charge
type CreateChargeResponse struct {
	// ProcessorID is the charge ID assigned by the processor
	ProcessorID string
	// Status is the initial charge status
	Status ChargeStatus
	// QRCode is the QR code image URL
	QRCode string
	// QRCodeBase64 is the QR code image encoded inline
	QRCodeBase64 string
	// PixCopyPaste is the EMV copy-and-paste payload
	PixCopyPaste string
	// ExpiresAt is when the charge stops being payable
	ExpiresAt time.Time
}

// ChargeState is the processor's current view of a charge
type ChargeState struct {
	ProcessorID string
	CustomID    string
	Status      ChargeStatus
	PaidAt      *time.Time
}

// Processor is the outbound port to the external PIX payment
// processor. Implementations live in the infrastructure layer.
type Processor interface {
	// Name identifies the processor in logs and records
	Name() string

	// CreateCharge registers a new PIX charge
	CreateCharge(ctx context.Context, req CreateChargeRequest) (*CreateChargeResponse, error)

	// GetChargeStatus queries the current state of a charge
	GetChargeStatus(ctx context.Context, processorID string) (*ChargeState, error)
}
