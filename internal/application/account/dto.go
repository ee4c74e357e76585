package account

import (
	"time"

	"github.com/Lion1208/fastpay/internal/application/identity"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyVolumePoint is one bucket of the dashboard deposit chart
type DailyVolumePoint struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
	Gross string `json:"gross"`
}

// DashboardResponse aggregates a partner's numbers
type DashboardResponse struct {
	AvailableBalance  string             `json:"available_balance"`
	CommissionBalance string             `json:"commission_balance"`
	TotalBalance      string             `json:"total_balance"`
	TotalVolumeMoved  string             `json:"total_volume_moved"`
	DepositsSettled   int64              `json:"deposits_settled"`
	TotalWithdrawn    string             `json:"total_withdrawn"`
	CommissionEarned  string             `json:"commission_earned"`
	RefereeCount      int64              `json:"referee_count"`
	FreeReferralSlots int                `json:"free_referral_slots"`
	DailyVolumes      []DailyVolumePoint `json:"daily_volumes"`
}

// AdminStatsResponse aggregates platform-wide numbers
type AdminStatsResponse struct {
	AccountCount       int64 `json:"account_count"`
	PendingWithdrawals int64 `json:"pending_withdrawals"`
}

// UpdateProfileInput carries profile changes a partner can make
type UpdateProfileInput struct {
	PixKey     string
	PixKeyType string
}

// UpdateFeesInput carries per-account fee overrides set by an admin
type UpdateFeesInput struct {
	DepositPercent    *decimal.Decimal
	DepositFixed      *decimal.Decimal
	WithdrawalPercent *decimal.Decimal
	TransferPercent   *decimal.Decimal
}

// RefereeResponse is the shape of a referred account in listings
type RefereeResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	Status           string    `json:"status"`
	TotalVolumeMoved string    `json:"total_volume_moved"`
	CreatedAt        time.Time `json:"created_at"`
}

// PublicPageResponse is the public referral landing payload
type PublicPageResponse struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	SlotsFree bool   `json:"slots_free"`
}

func toDailyVolumePoints(volumes []ledger.DailyVolume) []DailyVolumePoint {
	points := make([]DailyVolumePoint, len(volumes))
	for i, v := range volumes {
		points[i] = DailyVolumePoint{
			Day:   v.Day.Format("2006-01-02"),
			Count: v.Count,
			Gross: v.Gross.Amount().Round(2).String(),
		}
	}
	return points
}

// reuse the identity package's account shape for listings
type AccountResponse = identity.AccountResponse
