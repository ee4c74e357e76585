package persistence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements platform.SettingsRepository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// Load reads the stored settings. Keys missing from the table keep
// their compiled defaults, so a fresh database behaves the same as one
// that was never tuned.
func (r *GormSettingsRepository) Load(ctx context.Context) (platform.Settings, error) {
	settings := platform.DefaultSettings()

	var rows []models.SettingModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return settings, err
	}

	for _, row := range rows {
		if err := applySetting(&settings, row.Key, row.Value); err != nil {
			return settings, fmt.Errorf("setting %s: %w", row.Key, err)
		}
	}
	return settings, nil
}

// Save upserts every setting key
func (r *GormSettingsRepository) Save(ctx context.Context, s platform.Settings) error {
	now := time.Now()
	rows := []models.SettingModel{
		{Key: platform.KeyCommissionPercent, Value: s.CommissionPercent.String(), UpdatedAt: now},
		{Key: platform.KeyReferralVolumeThreshold, Value: s.ReferralVolumeThreshold.Amount().Round(2).String(), UpdatedAt: now},
		{Key: platform.KeyReferralSlotsPerGrant, Value: strconv.Itoa(s.ReferralSlotsPerGrant), UpdatedAt: now},
		{Key: platform.KeyMinWithdrawal, Value: s.MinWithdrawal.Amount().Round(2).String(), UpdatedAt: now},
		{Key: platform.KeyMinTransfer, Value: s.MinTransfer.Amount().Round(2).String(), UpdatedAt: now},
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rows).Error
}

func applySetting(s *platform.Settings, key, value string) error {
	switch key {
	case platform.KeyCommissionPercent:
		percent, err := decimal.NewFromString(value)
		if err != nil {
			return err
		}
		s.CommissionPercent = percent
	case platform.KeyReferralVolumeThreshold:
		threshold, err := valueobject.NewMoneyBRLFromString(value)
		if err != nil {
			return err
		}
		s.ReferralVolumeThreshold = threshold
	case platform.KeyReferralSlotsPerGrant:
		slots, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		s.ReferralSlotsPerGrant = slots
	case platform.KeyMinWithdrawal:
		min, err := valueobject.NewMoneyBRLFromString(value)
		if err != nil {
			return err
		}
		s.MinWithdrawal = min
	case platform.KeyMinTransfer:
		min, err := valueobject.NewMoneyBRLFromString(value)
		if err != nil {
			return err
		}
		s.MinTransfer = min
	}
	// Unknown keys are ignored so older rows never break startup
	return nil
}

// Ensure GormSettingsRepository implements platform.SettingsRepository
var _ platform.SettingsRepository = (*GormSettingsRepository)(nil)
