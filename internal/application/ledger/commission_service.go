package ledger

import (
	"context"

	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommissionService exposes read access to referral commissions
type CommissionService struct {
	commissionRepo ledger.CommissionRepository
	logger         *zap.Logger
}

// NewCommissionService creates a new commission service
func NewCommissionService(commissionRepo ledger.CommissionRepository, logger *zap.Logger) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		logger:         logger,
	}
}

// ListCommissions lists commissions earned by the given referrer
func (s *CommissionService) ListCommissions(ctx context.Context, referrerID uuid.UUID, page, pageSize int) ([]CommissionResponse, int64, error) {
	commissions, total, err := s.commissionRepo.List(ctx, ledger.CommissionFilter{
		ReferrerID: &referrerID,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CommissionResponse, len(commissions))
	for i, c := range commissions {
		responses[i] = ToCommissionResponse(c)
	}
	return responses, total, nil
}

// TotalEarned sums credited commissions for the given referrer
func (s *CommissionService) TotalEarned(ctx context.Context, referrerID uuid.UUID) (string, error) {
	total, err := s.commissionRepo.SumByReferrer(ctx, referrerID)
	if err != nil {
		return "", err
	}
	return total.Amount().Round(2).String(), nil
}
