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

// GormWithdrawalRepository implements ledger.WithdrawalRepository using GORM
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewGormWithdrawalRepository creates a new GormWithdrawalRepository
func NewGormWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// CreateWithHold inserts the withdrawal and debits the account by the
// recorded split in one database transaction. The debit carries floor
// guards on both buckets, so a concurrent spend that drained either
// bucket makes the guard match zero rows and the hold rolls back.
func (r *GormWithdrawalRepository) CreateWithHold(ctx context.Context, w *ledger.Withdrawal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.WithdrawalModel
		model.FromDomain(w)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		fromAvailable := w.DrawnFromAvailable.Amount().Round(2)
		fromCommission := w.DrawnFromCommission.Amount().Round(2)

		debit := tx.Model(&models.AccountModel{}).
			Where("id = ? AND available_balance >= ? AND commission_balance >= ?",
				w.AccountID, fromAvailable, fromCommission).
			UpdateColumns(map[string]interface{}{
				"available_balance":  gorm.Expr("available_balance - ?", fromAvailable),
				"commission_balance": gorm.Expr("commission_balance - ?", fromCommission),
			})
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return shared.ErrInsufficientBalance
		}
		return nil
	})
}

// FindByID finds a withdrawal by ID
func (r *GormWithdrawalRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Withdrawal, error) {
	var model models.WithdrawalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists withdrawals matching the filter
func (r *GormWithdrawalRepository) List(ctx context.Context, filter ledger.WithdrawalFilter) ([]*ledger.Withdrawal, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.WithdrawalModel{})

	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
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

	var modelList []models.WithdrawalModel
	if err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	withdrawals := make([]*ledger.Withdrawal, len(modelList))
	for i := range modelList {
		withdrawals[i] = modelList[i].ToDomain()
	}
	return withdrawals, total, nil
}

// UpdateStatus persists an approve or paid transition, guarded on the
// expected prior status so a racing reviewer cannot resolve the same
// withdrawal twice. Zero matched rows means the row already moved on.
func (r *GormWithdrawalRepository) UpdateStatus(ctx context.Context, w *ledger.Withdrawal, expected ledger.WithdrawalStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
		Where("id = ? AND status = ?", w.ID, string(expected)).
		Updates(map[string]interface{}{
			"status":      string(w.Status),
			"reviewed_by": w.ReviewedBy,
			"reviewed_at": w.ReviewedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidState
	}
	return nil
}

// RejectWithRefund persists the rejected status and returns the full
// hold to the account's available bucket, in one database transaction.
// The status guard keeps a double reject from refunding twice.
func (r *GormWithdrawalRepository) RejectWithRefund(ctx context.Context, w *ledger.Withdrawal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.WithdrawalModel{}).
			Where("id = ? AND status = ?", w.ID, string(ledger.WithdrawalPending)).
			Updates(map[string]interface{}{
				"status":      string(ledger.WithdrawalRejected),
				"reviewed_by": w.ReviewedBy,
				"reviewed_at": w.ReviewedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrInvalidState
		}

		refund := tx.Model(&models.AccountModel{}).
			Where("id = ?", w.AccountID).
			UpdateColumn("available_balance",
				gorm.Expr("available_balance + ?", w.TotalWithheld.Amount().Round(2)))
		if refund.Error != nil {
			return refund.Error
		}
		if refund.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// CountByStatus counts withdrawals in the given status
func (r *GormWithdrawalRepository) CountByStatus(ctx context.Context, status ledger.WithdrawalStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return count, err
}

// SumPaidByAccount sums paid-out amounts for an account
func (r *GormWithdrawalRepository) SumPaidByAccount(ctx context.Context, accountID uuid.UUID) (valueobject.Money, error) {
	var sum decimal.Decimal
	if err := r.db.WithContext(ctx).
		Model(&models.WithdrawalModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("account_id = ? AND status = ?", accountID, string(ledger.WithdrawalPaid)).
		Scan(&sum).Error; err != nil {
		return valueobject.ZeroBRL(), err
	}
	return valueobject.NewMoneyBRL(sum), nil
}

// Ensure GormWithdrawalRepository implements ledger.WithdrawalRepository
var _ ledger.WithdrawalRepository = (*GormWithdrawalRepository)(nil)
