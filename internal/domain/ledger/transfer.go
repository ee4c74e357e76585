package ledger

import (
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferFee computes the fee on an internal transfer:
// amount * percent / 100, rounded to cents.
func TransferFee(amount valueobject.Money, percent decimal.Decimal) valueobject.Money {
	return amount.CalculatePercentage(percent).RoundCents()
}

// Transfer moves money between two accounts' available buckets. The
// sender pays the fee out of the sent amount: the sender is debited
// Amount and the recipient is credited Amount minus Fee. Both legs and
// the record itself commit atomically.
type Transfer struct {
	shared.BaseEntity

	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Amount      valueobject.Money
	Fee         valueobject.Money
}

// ReceivedAmount returns what lands in the recipient's bucket
func (t *Transfer) ReceivedAmount() valueobject.Money {
	return t.Amount.MustSubtract(t.Fee)
}

// NewTransfer creates a transfer between two distinct accounts
func NewTransfer(senderID, recipientID uuid.UUID, amount valueobject.Money, feePercent decimal.Decimal, minAmount valueobject.Money) (*Transfer, error) {
	if senderID == uuid.Nil || recipientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Transfer requires sender and recipient")
	}
	if senderID == recipientID {
		return nil, shared.NewDomainError("SELF_TRANSFER", "Cannot transfer to the same account")
	}
	if ok, _ := amount.GreaterThanOrEqual(minAmount); !ok {
		return nil, shared.NewDomainError("AMOUNT_BELOW_MINIMUM", "Transfer amount is below the minimum")
	}
	fee := TransferFee(amount, feePercent)
	if ok, _ := amount.GreaterThanOrEqual(fee); !ok {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transfer amount does not cover the fee")
	}
	return &Transfer{
		BaseEntity:  shared.NewBaseEntity(),
		SenderID:    senderID,
		RecipientID: recipientID,
		Amount:      amount,
		Fee:         fee,
	}, nil
}
