package ledger

import (
	"context"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Settlement is the atomic unit applied when a deposit is confirmed
// paid. The repository applies every part in one database transaction,
// guarded by a compare-and-set on the transaction status so the same
// deposit can never settle twice.
type Settlement struct {
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	GrossAmount   valueobject.Money
	NetAmount     valueobject.Money
	PaidAt        time.Time

	// Commission is nil when the depositor has no referrer
	Commission *Commission

	// SlotThreshold is the cumulative volume at which the depositor's
	// one-time referral slot grant unlocks
	SlotThreshold valueobject.Money
}

// TransactionFilter contains filter options for listing deposits
type TransactionFilter struct {
	AccountID *uuid.UUID
	Status    *TransactionStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}

// DailyVolume is one bucket of the dashboard deposit chart
type DailyVolume struct {
	Day   time.Time
	Count int64
	Gross valueobject.Money
}

// TransactionRepository defines the interface for deposit persistence
type TransactionRepository interface {
	// Create creates a new pending transaction
	Create(ctx context.Context, tx *Transaction) error

	// Update persists processor identifiers and QR payloads
	Update(ctx context.Context, tx *Transaction) error

	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByCustomID finds a transaction by the custom ID echoed back
	// by processor callbacks
	FindByCustomID(ctx context.Context, customID string) (*Transaction, error)

	// List lists transactions matching the filter
	List(ctx context.Context, filter TransactionFilter) ([]*Transaction, int64, error)

	// FindPendingWithProcessorID returns the oldest pending transactions
	// that already have a processor ID, for the status poller
	FindPendingWithProcessorID(ctx context.Context, limit int) ([]*Transaction, error)

	// SumPaidGrossSince sums the gross amount of paid transactions for
	// an account created at or after the given time
	SumPaidGrossSince(ctx context.Context, accountID uuid.UUID, since time.Time) (valueobject.Money, error)

	// SumCreatedGrossSince sums the gross amount of non-failed
	// transactions created at or after the given time, for deposit
	// daily limits
	SumCreatedGrossSince(ctx context.Context, accountID uuid.UUID, since time.Time) (valueobject.Money, error)

	// CountPaidByAccount counts settled deposits for an account
	CountPaidByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)

	// DailyVolumes returns per-day paid deposit counts and gross sums
	// for the trailing number of days
	DailyVolumes(ctx context.Context, accountID uuid.UUID, days int) ([]DailyVolume, error)

	// SettleDeposit applies a settlement atomically. It returns true
	// when this call performed the settlement and false when the
	// transaction was no longer pending (already settled or expired),
	// which is a no-op success for idempotent delivery.
	SettleDeposit(ctx context.Context, s Settlement) (bool, error)

	// MarkExpired moves a pending transaction to expired
	MarkExpired(ctx context.Context, id uuid.UUID) error
}

// CommissionFilter contains filter options for listing commissions
type CommissionFilter struct {
	ReferrerID *uuid.UUID
	Page       int
	PageSize   int
}

// CommissionRepository defines the interface for commission persistence
type CommissionRepository interface {
	// FindByTransactionID finds the commission minted for a deposit
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*Commission, error)

	// List lists commissions matching the filter
	List(ctx context.Context, filter CommissionFilter) ([]*Commission, int64, error)

	// SumByReferrer sums credited commission amounts for a referrer
	SumByReferrer(ctx context.Context, referrerID uuid.UUID) (valueobject.Money, error)
}

// WithdrawalFilter contains filter options for listing withdrawals
type WithdrawalFilter struct {
	AccountID *uuid.UUID
	Status    *WithdrawalStatus
	Page      int
	PageSize  int
}

// WithdrawalRepository defines the interface for withdrawal persistence
type WithdrawalRepository interface {
	// CreateWithHold inserts the withdrawal and debits the account's
	// buckets by the recorded split, in one database transaction with
	// balance floor guards. Returns shared.ErrInsufficientBalance when
	// a bucket cannot cover its share.
	CreateWithHold(ctx context.Context, w *Withdrawal) error

	// FindByID finds a withdrawal by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Withdrawal, error)

	// List lists withdrawals matching the filter
	List(ctx context.Context, filter WithdrawalFilter) ([]*Withdrawal, int64, error)

	// UpdateStatus persists an approve or paid transition as a
	// conditional update against the expected prior status. Returns
	// shared.ErrInvalidState when the row is no longer in that status.
	UpdateStatus(ctx context.Context, w *Withdrawal, expected WithdrawalStatus) error

	// RejectWithRefund persists the rejected status and refunds the
	// full hold to the account's available bucket, atomically
	RejectWithRefund(ctx context.Context, w *Withdrawal) error

	// CountByStatus counts withdrawals in the given status
	CountByStatus(ctx context.Context, status WithdrawalStatus) (int64, error)

	// SumPaidByAccount sums paid-out amounts for an account
	SumPaidByAccount(ctx context.Context, accountID uuid.UUID) (valueobject.Money, error)
}

// TransferFilter contains filter options for listing transfers
type TransferFilter struct {
	AccountID *uuid.UUID // matches sender or recipient
	Page      int
	PageSize  int
}

// TransferRepository defines the interface for transfer persistence
type TransferRepository interface {
	// Execute debits the sender, credits the recipient and inserts the
	// record in one database transaction with a balance floor guard on
	// the sender. Returns shared.ErrInsufficientBalance when the
	// sender cannot cover the amount.
	Execute(ctx context.Context, t *Transfer) error

	// FindByID finds a transfer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)

	// List lists transfers matching the filter
	List(ctx context.Context, filter TransferFilter) ([]*Transfer, int64, error)
}
