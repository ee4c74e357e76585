package platform

import (
	"context"

	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Setting keys stored in the settings table
const (
	KeyCommissionPercent       = "commission_percent"
	KeyReferralVolumeThreshold = "referral_volume_threshold"
	KeyReferralSlotsPerGrant   = "referral_slots_per_grant"
	KeyMinWithdrawal           = "min_withdrawal"
	KeyMinTransfer             = "min_transfer"
)

// Settings are the platform-wide tunables admins can change at
// runtime. Resolution order for a value is account override, then the
// stored setting, then the compiled default below.
type Settings struct {
	// CommissionPercent is the referral commission on settled deposits
	CommissionPercent decimal.Decimal
	// ReferralVolumeThreshold is the cumulative deposit volume that
	// unlocks an account's one-time referral slot grant
	ReferralVolumeThreshold valueobject.Money
	// ReferralSlotsPerGrant is how many referees one grant allows
	ReferralSlotsPerGrant int
	// MinWithdrawal is the smallest payout request accepted
	MinWithdrawal valueobject.Money
	// MinTransfer is the smallest internal transfer accepted
	MinTransfer valueobject.Money
}

// DefaultSettings returns the compiled defaults
func DefaultSettings() Settings {
	return Settings{
		CommissionPercent:       decimal.NewFromFloat(1.0),
		ReferralVolumeThreshold: valueobject.NewMoneyBRLFromFloat(1000.00),
		ReferralSlotsPerGrant:   1,
		MinWithdrawal:           valueobject.NewMoneyBRLFromFloat(10.00),
		MinTransfer:             valueobject.NewMoneyBRLFromFloat(1.00),
	}
}

// SettingsRepository loads and stores the runtime settings. Load fills
// missing keys from the defaults so callers always see a complete set.
type SettingsRepository interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}
