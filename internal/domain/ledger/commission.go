package ledger

import (
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionStatus tracks whether a referral commission still stands
type CommissionStatus string

const (
	CommissionCredited CommissionStatus = "credited"
	CommissionReversed CommissionStatus = "reversed"
)

// Commission is the referral reward minted when a referee's deposit
// settles. The percent is snapshotted at settlement time.
type Commission struct {
	shared.BaseEntity

	TransactionID uuid.UUID
	ReferrerID    uuid.UUID // beneficiary
	RefereeID     uuid.UUID // depositor
	Amount        valueobject.Money
	Percent       decimal.Decimal
	Status        CommissionStatus
}

// NewCommission creates a credited commission for a settled deposit.
// The amount is the gross deposit times the percent, rounded to cents.
func NewCommission(transactionID, referrerID, refereeID uuid.UUID, gross valueobject.Money, percent decimal.Decimal) (*Commission, error) {
	if transactionID == uuid.Nil || referrerID == uuid.Nil || refereeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMMISSION", "Commission requires transaction, referrer and referee")
	}
	if referrerID == refereeID {
		return nil, shared.NewDomainError("INVALID_COMMISSION", "Account cannot earn commission on its own deposit")
	}
	if percent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COMMISSION", "Commission percent cannot be negative")
	}
	amount := gross.CalculatePercentage(percent).RoundCents()
	return &Commission{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: transactionID,
		ReferrerID:    referrerID,
		RefereeID:     refereeID,
		Amount:        amount,
		Percent:       percent,
		Status:        CommissionCredited,
	}, nil
}
