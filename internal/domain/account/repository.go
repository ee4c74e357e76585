package account

import (
	"context"

	"github.com/google/uuid"
)

// Filter contains filter options for listing accounts
type Filter struct {
	Role     *Role
	Status   *Status
	Search   string
	Page     int
	PageSize int
}

// Repository defines the interface for account persistence
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, acc *Account) error

	// Update persists changes to an existing account
	Update(ctx context.Context, acc *Account) error

	// FindByID finds an account by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByCode finds an account by its login/referral code
	FindByCode(ctx context.Context, code string) (*Account, error)

	// FindByDocument finds an account by its CPF
	FindByDocument(ctx context.Context, document string) (*Account, error)

	// List lists accounts matching the filter
	List(ctx context.Context, filter Filter) ([]*Account, int64, error)

	// FindReferees finds accounts that registered under the given referrer
	FindReferees(ctx context.Context, referrerID uuid.UUID, filter Filter) ([]*Account, int64, error)

	// CountReferees counts accounts that registered under the given referrer
	CountReferees(ctx context.Context, referrerID uuid.UUID) (int64, error)

	// ExistsByCode reports whether an account with the code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// ConsumeReferralSlot atomically increments the referrer's used slot
	// counter, but only while a free slot remains. Admin referrers are
	// never slot-limited. Returns shared.ErrNoReferralSlots when no
	// slot could be consumed.
	ConsumeReferralSlot(ctx context.Context, referrerID uuid.UUID, slotsPerGrant int) error

	// Count counts all accounts
	Count(ctx context.Context) (int64, error)
}
