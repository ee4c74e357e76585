package persistence

import (
	"context"
	"errors"

	"github.com/Lion1208/fastpay/internal/domain/account"
	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements account.Repository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Create creates a new account
func (r *GormAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	var model models.AccountModel
	model.FromDomain(acc)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing account
func (r *GormAccountRepository) Update(ctx context.Context, acc *account.Account) error {
	var model models.AccountModel
	model.FromDomain(acc)
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
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

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds an account by its login/referral code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDocument finds an account by its CPF
func (r *GormAccountRepository) FindByDocument(ctx context.Context, document string) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "document = ?", document).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists accounts matching the filter
func (r *GormAccountRepository) List(ctx context.Context, filter account.Filter) ([]*account.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})

	if filter.Role != nil {
		query = query.Where("role = ?", string(*filter.Role))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR document LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modelList []models.AccountModel
	if err := applyAccountPagination(query, filter).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	return toDomainAccounts(modelList), total, nil
}

// FindReferees finds accounts that registered under the given referrer
func (r *GormAccountRepository) FindReferees(ctx context.Context, referrerID uuid.UUID, filter account.Filter) ([]*account.Account, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("referrer_id = ?", referrerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modelList []models.AccountModel
	if err := applyAccountPagination(query, filter).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	return toDomainAccounts(modelList), total, nil
}

// CountReferees counts accounts that registered under the given referrer
func (r *GormAccountRepository) CountReferees(ctx context.Context, referrerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error
	return count, err
}

// ExistsByCode reports whether an account with the code exists
func (r *GormAccountRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// ConsumeReferralSlot atomically claims one referral slot on the
// referrer. The guard keeps used below granted*slotsPerGrant, so two
// concurrent registrations can never share the last slot. Admin
// referrers bypass the guard.
func (r *GormAccountRepository) ConsumeReferralSlot(ctx context.Context, referrerID uuid.UUID, slotsPerGrant int) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountModel{}).
		Where("id = ? AND (role = 'admin' OR referral_slots_used < referral_slots_granted * ?)", referrerID, slotsPerGrant).
		UpdateColumn("referral_slots_used", gorm.Expr("referral_slots_used + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNoReferralSlots
	}
	return nil
}

// Count counts all accounts
func (r *GormAccountRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AccountModel{}).Count(&count).Error
	return count, err
}

func applyAccountPagination(query *gorm.DB, filter account.Filter) *gorm.DB {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

func toDomainAccounts(modelList []models.AccountModel) []*account.Account {
	accounts := make([]*account.Account, len(modelList))
	for i := range modelList {
		accounts[i] = modelList[i].ToDomain()
	}
	return accounts
}

// Ensure GormAccountRepository implements account.Repository
var _ account.Repository = (*GormAccountRepository)(nil)
