package platform

import (
	"context"

	"github.com/Lion1208/fastpay/internal/domain/platform"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// SettingsService exposes the platform tunables to admins
type SettingsService struct {
	settingsRepo platform.SettingsRepository
	logger       *zap.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo platform.SettingsRepository, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		logger:       logger,
	}
}

// GetSettings returns the current runtime settings
func (s *SettingsService) GetSettings(ctx context.Context) (*SettingsResponse, error) {
	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	response := ToSettingsResponse(settings)
	return &response, nil
}

// UpdateSettings applies the provided overrides and persists the
// resulting set
func (s *SettingsService) UpdateSettings(ctx context.Context, input UpdateSettingsInput) (*SettingsResponse, error) {
	settings, err := s.settingsRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	if input.CommissionPercent != nil {
		if input.CommissionPercent.IsNegative() {
			return nil, shared.NewDomainError("INVALID_SETTING", "Commission percent cannot be negative")
		}
		settings.CommissionPercent = *input.CommissionPercent
	}
	if input.ReferralVolumeThreshold != nil {
		if input.ReferralVolumeThreshold.IsNegative() {
			return nil, shared.NewDomainError("INVALID_SETTING", "Referral volume threshold cannot be negative")
		}
		settings.ReferralVolumeThreshold = valueobject.NewMoneyBRL(*input.ReferralVolumeThreshold)
	}
	if input.ReferralSlotsPerGrant != nil {
		if *input.ReferralSlotsPerGrant < 1 {
			return nil, shared.NewDomainError("INVALID_SETTING", "Slots per grant must be at least 1")
		}
		settings.ReferralSlotsPerGrant = *input.ReferralSlotsPerGrant
	}
	if input.MinWithdrawal != nil {
		if input.MinWithdrawal.IsNegative() {
			return nil, shared.NewDomainError("INVALID_SETTING", "Minimum withdrawal cannot be negative")
		}
		settings.MinWithdrawal = valueobject.NewMoneyBRL(*input.MinWithdrawal)
	}
	if input.MinTransfer != nil {
		if input.MinTransfer.IsNegative() {
			return nil, shared.NewDomainError("INVALID_SETTING", "Minimum transfer cannot be negative")
		}
		settings.MinTransfer = valueobject.NewMoneyBRL(*input.MinTransfer)
	}

	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}

	s.logger.Info("Platform settings updated")

	response := ToSettingsResponse(settings)
	return &response, nil
}
