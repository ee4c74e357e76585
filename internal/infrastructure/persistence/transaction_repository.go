package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// Create creates a new pending transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	var model models.TransactionModel
	model.FromDomain(tx)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists processor identifiers and QR payloads
func (r *GormTransactionRepository) Update(ctx context.Context, tx *ledger.Transaction) error {
	var model models.TransactionModel
	model.FromDomain(tx)
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ?", model.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomID finds a transaction by the custom ID echoed back by
// processor callbacks
func (r *GormTransactionRepository) FindByCustomID(ctx context.Context, customID string) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "custom_id = ?", customID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists transactions matching the filter
func (r *GormTransactionRepository) List(ctx context.Context, filter ledger.TransactionFilter) ([]*ledger.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{})

	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
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

	var modelList []models.TransactionModel
	if err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	transactions := make([]*ledger.Transaction, len(modelList))
	for i := range modelList {
		transactions[i] = modelList[i].ToDomain()
	}
	return transactions, total, nil
}

// FindPendingWithProcessorID returns the oldest pending transactions
// that already have a processor ID, for the status poller
func (r *GormTransactionRepository) FindPendingWithProcessorID(ctx context.Context, limit int) ([]*ledger.Transaction, error) {
	var modelList []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND processor_id <> ''", string(ledger.TransactionPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	transactions := make([]*ledger.Transaction, len(modelList))
	for i := range modelList {
		transactions[i] = modelList[i].ToDomain()
	}
	return transactions, nil
}

// SumPaidGrossSince sums the gross amount of paid transactions for an
// account created at or after the given time
func (r *GormTransactionRepository) SumPaidGrossSince(ctx context.Context, accountID uuid.UUID, since time.Time) (valueobject.Money, error) {
	return r.sumGross(ctx, r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("account_id = ? AND status = ? AND created_at >= ?", accountID, string(ledger.TransactionPaid), since))
}

// SumCreatedGrossSince sums the gross amount of non-failed transactions
// created at or after the given time
func (r *GormTransactionRepository) SumCreatedGrossSince(ctx context.Context, accountID uuid.UUID, since time.Time) (valueobject.Money, error) {
	return r.sumGross(ctx, r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("account_id = ? AND status <> ? AND created_at >= ?", accountID, string(ledger.TransactionFailed), since))
}

func (r *GormTransactionRepository) sumGross(ctx context.Context, query *gorm.DB) (valueobject.Money, error) {
	var sum decimal.Decimal
	if err := query.
		Select("COALESCE(SUM(gross_amount), 0)").
		Scan(&sum).Error; err != nil {
		return valueobject.ZeroBRL(), err
	}
	return valueobject.NewMoneyBRL(sum), nil
}

// CountPaidByAccount counts settled deposits for an account
func (r *GormTransactionRepository) CountPaidByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("account_id = ? AND status = ?", accountID, string(ledger.TransactionPaid)).
		Count(&count).Error
	return count, err
}

// DailyVolumes returns per-day paid deposit counts and gross sums for
// the trailing number of days
func (r *GormTransactionRepository) DailyVolumes(ctx context.Context, accountID uuid.UUID, days int) ([]ledger.DailyVolume, error) {
	type row struct {
		Day   time.Time
		Count int64
		Gross decimal.Decimal
	}

	since := time.Now().AddDate(0, 0, -days)
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Select("DATE_TRUNC('day', paid_at) AS day, COUNT(*) AS count, COALESCE(SUM(gross_amount), 0) AS gross").
		Where("account_id = ? AND status = ? AND paid_at >= ?", accountID, string(ledger.TransactionPaid), since).
		Group("DATE_TRUNC('day', paid_at)").
		Order("day ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	volumes := make([]ledger.DailyVolume, len(rows))
	for i, rw := range rows {
		volumes[i] = ledger.DailyVolume{
			Day:   rw.Day,
			Count: rw.Count,
			Gross: valueobject.NewMoneyBRL(rw.Gross),
		}
	}
	return volumes, nil
}

// SettleDeposit applies a settlement atomically. The status flip is a
// compare-and-set on the pending state, so the second delivery of the
// same confirmation matches zero rows and the whole settlement becomes
// a no-op. Every credit lives in the same database transaction as the
// flip.
func (r *GormTransactionRepository) SettleDeposit(ctx context.Context, s ledger.Settlement) (bool, error) {
	settled := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.TransactionModel{}).
			Where("id = ? AND status = ?", s.TransactionID, string(ledger.TransactionPending)).
			Updates(map[string]interface{}{
				"status":  string(ledger.TransactionPaid),
				"paid_at": s.PaidAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		settled = true

		net := s.NetAmount.Amount().Round(2)
		gross := s.GrossAmount.Amount().Round(2)

		credit := tx.Model(&models.AccountModel{}).
			Where("id = ?", s.AccountID).
			UpdateColumns(map[string]interface{}{
				"available_balance":  gorm.Expr("available_balance + ?", net),
				"total_volume_moved": gorm.Expr("total_volume_moved + ?", gross),
			})
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if s.Commission != nil {
			var cm models.CommissionModel
			cm.FromDomain(s.Commission)
			if err := tx.Create(&cm).Error; err != nil {
				return err
			}
			reward := tx.Model(&models.AccountModel{}).
				Where("id = ?", s.Commission.ReferrerID).
				UpdateColumn("commission_balance", gorm.Expr("commission_balance + ?", cm.Amount))
			if reward.Error != nil {
				return reward.Error
			}
		}

		// One-time grant: once cumulative volume crosses the
		// threshold, the guard on granted = 0 keeps later deposits
		// from granting again.
		grant := tx.Model(&models.AccountModel{}).
			Where("id = ? AND referral_slots_granted = 0 AND total_volume_moved >= ?",
				s.AccountID, s.SlotThreshold.Amount().Round(2)).
			UpdateColumn("referral_slots_granted", 1)
		if grant.Error != nil {
			return grant.Error
		}

		return nil
	})
	if err != nil {
		return false, err
	}
	return settled, nil
}

// MarkExpired moves a pending transaction to expired
func (r *GormTransactionRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND status = ?", id, string(ledger.TransactionPending)).
		UpdateColumn("status", string(ledger.TransactionExpired))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidState
	}
	return nil
}

// Ensure GormTransactionRepository implements ledger.TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
