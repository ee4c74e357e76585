package ledger

import (
	"time"

	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDepositInput contains the data needed to open a PIX charge
type CreateDepositInput struct {
	AccountID     uuid.UUID
	Amount        decimal.Decimal
	PayerName     string
	PayerDocument string
}

// DepositResponse is the public shape of a deposit transaction
type DepositResponse struct {
	ID           uuid.UUID  `json:"id"`
	Status       string     `json:"status"`
	GrossAmount  string     `json:"gross_amount"`
	FeeTaken     string     `json:"fee_taken"`
	NetAmount    string     `json:"net_amount"`
	QRCode       string     `json:"qr_code,omitempty"`
	QRCodeBase64 string     `json:"qr_code_base64,omitempty"`
	PixCopyPaste string     `json:"pix_copy_paste,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToDepositResponse converts a domain transaction to its public shape
func ToDepositResponse(t *ledger.Transaction) DepositResponse {
	return DepositResponse{
		ID:           t.ID,
		Status:       string(t.Status),
		GrossAmount:  t.GrossAmount.Amount().Round(2).String(),
		FeeTaken:     t.FeeTaken().Amount().Round(2).String(),
		NetAmount:    t.NetAmount.Amount().Round(2).String(),
		QRCode:       t.QRCode,
		QRCodeBase64: t.QRCodeBase64,
		PixCopyPaste: t.PixCopyPaste,
		PaidAt:       t.PaidAt,
		CreatedAt:    t.CreatedAt,
	}
}

// RequestWithdrawalInput contains the data needed to request a payout
type RequestWithdrawalInput struct {
	AccountID  uuid.UUID
	Amount     decimal.Decimal
	PixKey     string
	PixKeyType string
}

// WithdrawalResponse is the public shape of a withdrawal
type WithdrawalResponse struct {
	ID                  uuid.UUID  `json:"id"`
	AccountID           uuid.UUID  `json:"account_id"`
	Status              string     `json:"status"`
	Amount              string     `json:"amount"`
	Fee                 string     `json:"fee"`
	TotalWithheld       string     `json:"total_withheld"`
	DrawnFromAvailable  string     `json:"drawn_from_available"`
	DrawnFromCommission string     `json:"drawn_from_commission"`
	PixKey              string     `json:"pix_key"`
	PixKeyType          string     `json:"pix_key_type"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ToWithdrawalResponse converts a domain withdrawal to its public shape
func ToWithdrawalResponse(w *ledger.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:                  w.ID,
		AccountID:           w.AccountID,
		Status:              string(w.Status),
		Amount:              w.Amount.Amount().Round(2).String(),
		Fee:                 w.Fee.Amount().Round(2).String(),
		TotalWithheld:       w.TotalWithheld.Amount().Round(2).String(),
		DrawnFromAvailable:  w.DrawnFromAvailable.Amount().Round(2).String(),
		DrawnFromCommission: w.DrawnFromCommission.Amount().Round(2).String(),
		PixKey:              w.PixKey,
		PixKeyType:          w.PixKeyType,
		ReviewedAt:          w.ReviewedAt,
		CreatedAt:           w.CreatedAt,
	}
}

// SendTransferInput contains the data needed to transfer between accounts
type SendTransferInput struct {
	SenderID      uuid.UUID
	RecipientCode string
	Amount        decimal.Decimal
}

// TransferPreview shows a sender what a transfer would cost
type TransferPreview struct {
	Amount        string `json:"amount"`
	Fee           string `json:"fee"`
	RecipientGets string `json:"recipient_gets"`
	RecipientName string `json:"recipient_name"`
	RecipientCode string `json:"recipient_code"`
}

// TransferResponse is the public shape of a transfer
type TransferResponse struct {
	ID            uuid.UUID `json:"id"`
	SenderID      uuid.UUID `json:"sender_id"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	Amount        string    `json:"amount"`
	Fee           string    `json:"fee"`
	RecipientGets string    `json:"recipient_gets"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToTransferResponse converts a domain transfer to its public shape
func ToTransferResponse(t *ledger.Transfer) TransferResponse {
	return TransferResponse{
		ID:            t.ID,
		SenderID:      t.SenderID,
		RecipientID:   t.RecipientID,
		Amount:        t.Amount.Amount().Round(2).String(),
		Fee:           t.Fee.Amount().Round(2).String(),
		RecipientGets: t.ReceivedAmount().Amount().Round(2).String(),
		CreatedAt:     t.CreatedAt,
	}
}

// CommissionResponse is the public shape of a referral commission
type CommissionResponse struct {
	ID            uuid.UUID `json:"id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	RefereeID     uuid.UUID `json:"referee_id"`
	Amount        string    `json:"amount"`
	Percent       string    `json:"percent"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToCommissionResponse converts a domain commission to its public shape
func ToCommissionResponse(c *ledger.Commission) CommissionResponse {
	return CommissionResponse{
		ID:            c.ID,
		TransactionID: c.TransactionID,
		RefereeID:     c.RefereeID,
		Amount:        c.Amount.Amount().Round(2).String(),
		Percent:       c.Percent.String(),
		Status:        string(c.Status),
		CreatedAt:     c.CreatedAt,
	}
}
