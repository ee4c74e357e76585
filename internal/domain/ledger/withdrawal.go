package ledger

import (
	"time"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents the review lifecycle of a payout request
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalPaid     WithdrawalStatus = "paid"
)

// IsValid checks if the status is a known value
func (s WithdrawalStatus) IsValid() bool {
	switch s {
	case WithdrawalPending, WithdrawalApproved, WithdrawalRejected, WithdrawalPaid:
		return true
	}
	return false
}

// CanTransitionTo checks a status transition
func (s WithdrawalStatus) CanTransitionTo(next WithdrawalStatus) bool {
	switch s {
	case WithdrawalPending:
		return next == WithdrawalApproved || next == WithdrawalRejected
	case WithdrawalApproved:
		return next == WithdrawalPaid
	}
	return false
}

// WithdrawalFee computes the fee withheld on top of the requested
// amount: amount * percent / 100, rounded to cents.
func WithdrawalFee(amount valueobject.Money, percent decimal.Decimal) valueobject.Money {
	return amount.CalculatePercentage(percent).RoundCents()
}

// Withdrawal is a payout request. On creation the full TotalWithheld
// (amount plus fee) is held from the account, drawn from the available
// bucket first and the commission bucket for any remainder. Rejection
// refunds the whole hold to the available bucket.
type Withdrawal struct {
	shared.BaseEntity

	AccountID     uuid.UUID
	Amount        valueobject.Money
	Fee           valueobject.Money
	TotalWithheld valueobject.Money

	DrawnFromAvailable  valueobject.Money
	DrawnFromCommission valueobject.Money

	PixKey     string
	PixKeyType string

	Status     WithdrawalStatus
	ReviewedBy *uuid.UUID
	ReviewedAt *time.Time
}

// NewWithdrawal creates a pending payout request. The split between
// buckets is decided here from the balances observed by the caller;
// the repository re-checks both floors when it applies the hold.
func NewWithdrawal(accountID uuid.UUID, amount valueobject.Money, feePercent decimal.Decimal, available, commission valueobject.Money, minAmount valueobject.Money, pixKey, pixKeyType string) (*Withdrawal, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	if pixKey == "" {
		return nil, shared.NewDomainError("INVALID_PIX_KEY", "PIX key is required for withdrawal")
	}
	if ok, _ := amount.GreaterThanOrEqual(minAmount); !ok {
		return nil, shared.NewDomainError("AMOUNT_BELOW_MINIMUM", "Withdrawal amount is below the minimum")
	}

	fee := WithdrawalFee(amount, feePercent)
	total := amount.MustAdd(fee)

	totalBalance := available.MustAdd(commission)
	if ok, _ := totalBalance.GreaterThanOrEqual(total); !ok {
		return nil, shared.ErrInsufficientBalance
	}

	fromAvailable := total
	fromCommission := valueobject.ZeroBRL()
	if covered, _ := available.GreaterThanOrEqual(total); !covered {
		fromAvailable = available
		fromCommission = total.MustSubtract(available)
	}

	return &Withdrawal{
		BaseEntity:          shared.NewBaseEntity(),
		AccountID:           accountID,
		Amount:              amount,
		Fee:                 fee,
		TotalWithheld:       total,
		DrawnFromAvailable:  fromAvailable,
		DrawnFromCommission: fromCommission,
		PixKey:              pixKey,
		PixKeyType:          pixKeyType,
		Status:              WithdrawalPending,
	}, nil
}

// Approve moves the request to approved
func (w *Withdrawal) Approve(reviewerID uuid.UUID) error {
	if !w.Status.CanTransitionTo(WithdrawalApproved) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	w.Status = WithdrawalApproved
	w.ReviewedBy = &reviewerID
	w.ReviewedAt = &now
	return nil
}

// Reject moves the request to rejected. The repository refunds the
// hold in the same database transaction.
func (w *Withdrawal) Reject(reviewerID uuid.UUID) error {
	if !w.Status.CanTransitionTo(WithdrawalRejected) {
		return shared.ErrInvalidState
	}
	now := time.Now()
	w.Status = WithdrawalRejected
	w.ReviewedBy = &reviewerID
	w.ReviewedAt = &now
	return nil
}

// MarkPaid records that the payout left the platform
func (w *Withdrawal) MarkPaid() error {
	if !w.Status.CanTransitionTo(WithdrawalPaid) {
		return shared.ErrInvalidState
	}
	w.Status = WithdrawalPaid
	return nil
}
