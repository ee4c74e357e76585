package platform

import (
	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/shopspring/decimal"
)

// UpdateSettingsInput patches the runtime settings. Nil fields keep
// their current value.
type UpdateSettingsInput struct {
	CommissionPercent       *decimal.Decimal `json:"commission_percent"`
	ReferralVolumeThreshold *decimal.Decimal `json:"referral_volume_threshold"`
	ReferralSlotsPerGrant   *int             `json:"referral_slots_per_grant"`
	MinWithdrawal           *decimal.Decimal `json:"min_withdrawal"`
	MinTransfer             *decimal.Decimal `json:"min_transfer"`
}

// SettingsResponse is the public shape of the runtime settings
type SettingsResponse struct {
	CommissionPercent       string `json:"commission_percent"`
	ReferralVolumeThreshold string `json:"referral_volume_threshold"`
	ReferralSlotsPerGrant   int    `json:"referral_slots_per_grant"`
	MinWithdrawal           string `json:"min_withdrawal"`
	MinTransfer             string `json:"min_transfer"`
}

// ToSettingsResponse converts domain settings to their public shape
func ToSettingsResponse(s platform.Settings) SettingsResponse {
	return SettingsResponse{
		CommissionPercent:       s.CommissionPercent.String(),
		ReferralVolumeThreshold: s.ReferralVolumeThreshold.Amount().Round(2).String(),
		ReferralSlotsPerGrant:   s.ReferralSlotsPerGrant,
		MinWithdrawal:           s.MinWithdrawal.Amount().Round(2).String(),
		MinTransfer:             s.MinTransfer.Amount().Round(2).String(),
	}
}
