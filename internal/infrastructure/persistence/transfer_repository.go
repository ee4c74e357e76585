package persistence

import (
	"context"
	"errors"

	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransferRepository implements ledger.TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// Execute debits the sender, credits the recipient and inserts the
// record in one database transaction. The sender debit carries a
// balance floor guard, so a concurrent spend rolls the transfer back
// instead of overdrawing.
func (r *GormTransferRepository) Execute(ctx context.Context, t *ledger.Transfer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.TransferModel
		model.FromDomain(t)
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		amount := t.Amount.Amount().Round(2)
		received := t.ReceivedAmount().Amount().Round(2)

		debit := tx.Model(&models.AccountModel{}).
			Where("id = ? AND available_balance >= ?", t.SenderID, amount).
			UpdateColumn("available_balance", gorm.Expr("available_balance - ?", amount))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return shared.ErrInsufficientBalance
		}

		credit := tx.Model(&models.AccountModel{}).
			Where("id = ?", t.RecipientID).
			UpdateColumn("available_balance", gorm.Expr("available_balance + ?", received))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// FindByID finds a transfer by ID
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transfer, error) {
	var model models.TransferModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists transfers matching the filter
func (r *GormTransferRepository) List(ctx context.Context, filter ledger.TransferFilter) ([]*ledger.Transfer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransferModel{})

	if filter.AccountID != nil {
		query = query.Where("sender_id = ? OR recipient_id = ?", *filter.AccountID, *filter.AccountID)
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

	var modelList []models.TransferModel
	if err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	transfers := make([]*ledger.Transfer, len(modelList))
	for i := range modelList {
		transfers[i] = modelList[i].ToDomain()
	}
	return transfers, total, nil
}

// Ensure GormTransferRepository implements ledger.TransferRepository
var _ ledger.TransferRepository = (*GormTransferRepository)(nil)
