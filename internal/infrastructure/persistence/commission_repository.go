package persistence

import (
	"context"
	"errors"

	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormCommissionRepository implements ledger.CommissionRepository using GORM
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new GormCommissionRepository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// FindByTransactionID finds the commission minted for a deposit
func (r *GormCommissionRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*ledger.Commission, error) {
	var model models.CommissionModel
	if err := r.db.WithContext(ctx).First(&model, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists commissions matching the filter
func (r *GormCommissionRepository) List(ctx context.Context, filter ledger.CommissionFilter) ([]*ledger.Commission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CommissionModel{})

	if filter.ReferrerID != nil {
		query = query.Where("referrer_id = ?", *filter.ReferrerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var modelList []models.CommissionModel
	if err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	commissions := make([]*ledger.Commission, len(modelList))
	for i := range modelList {
		commissions[i] = modelList[i].ToDomain()
	}
	return commissions, total, nil
}

// SumByReferrer sums credited commission amounts for a referrer
func (r *GormCommissionRepository) SumByReferrer(ctx context.Context, referrerID uuid.UUID) (valueobject.Money, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.CommissionModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("referrer_id = ? AND status = ?", referrerID, string(ledger.CommissionCredited)).
		Scan(&sum).Error; err != nil {
		return valueobject.ZeroBRL(), err
	}
	return valueobject.NewMoneyBRL(sum), nil
}

// Ensure GormCommissionRepository implements ledger.CommissionRepository
var _ ledger.CommissionRepository = (*GormCommissionRepository)(nil)
