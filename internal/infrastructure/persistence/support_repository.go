package persistence

import (
	"context"
	"errors"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/support"
	"github.com/Lion1208/fastpay/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTicketRepository implements support.TicketRepository using GORM
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GormTicketRepository
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Create creates a new ticket
func (r *GormTicketRepository) Create(ctx context.Context, t *support.Ticket) error {
	var model models.TicketModel
	model.FromDomain(t)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists reply and status changes
func (r *GormTicketRepository) Update(ctx context.Context, t *support.Ticket) error {
	var model models.TicketModel
	model.FromDomain(t)
	result := r.db.WithContext(ctx).
		Model(&models.TicketModel{}).
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

// FindByID finds a ticket by ID
func (r *GormTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*support.Ticket, error) {
	var model models.TicketModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List lists tickets matching the filter
func (r *GormTicketRepository) List(ctx context.Context, filter support.TicketFilter) ([]*support.Ticket, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TicketModel{})

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

	var modelList []models.TicketModel
	if err := query.
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, 0, err
	}

	tickets := make([]*support.Ticket, len(modelList))
	for i := range modelList {
		tickets[i] = modelList[i].ToDomain()
	}
	return tickets, total, nil
}

// Ensure GormTicketRepository implements support.TicketRepository
var _ support.TicketRepository = (*GormTicketRepository)(nil)

// GormAPIKeyRepository implements support.APIKeyRepository using GORM
type GormAPIKeyRepository struct {
	db *gorm.DB
}

// NewGormAPIKeyRepository creates a new GormAPIKeyRepository
func NewGormAPIKeyRepository(db *gorm.DB) *GormAPIKeyRepository {
	return &GormAPIKeyRepository{db: db}
}

// Create creates a new key
func (r *GormAPIKeyRepository) Create(ctx context.Context, k *support.APIKey) error {
	var model models.APIKeyModel
	model.FromDomain(k)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists revocation and usage changes
func (r *GormAPIKeyRepository) Update(ctx context.Context, k *support.APIKey) error {
	var model models.APIKeyModel
	model.FromDomain(k)
	result := r.db.WithContext(ctx).
		Model(&models.APIKeyModel{}).
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

// FindByKey finds an active key by its secret value
func (r *GormAPIKeyRepository) FindByKey(ctx context.Context, key string) (*support.APIKey, error) {
	var model models.APIKeyModel
	if err := r.db.WithContext(ctx).First(&model, "key = ? AND active", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByID finds a key by ID
func (r *GormAPIKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*support.APIKey, error) {
	var model models.APIKeyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByAccount lists an account's keys
func (r *GormAPIKeyRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*support.APIKey, error) {
	var modelList []models.APIKeyModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	keys := make([]*support.APIKey, len(modelList))
	for i := range modelList {
		keys[i] = modelList[i].ToDomain()
	}
	return keys, nil
}

// Ensure GormAPIKeyRepository implements support.APIKeyRepository
var _ support.APIKeyRepository = (*GormAPIKeyRepository)(nil)
