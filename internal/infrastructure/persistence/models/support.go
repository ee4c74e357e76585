package models

import (
	"time"

	"github.com/Lion1208/fastpay/internal/domain/support"
	"github.com/google/uuid"
)

// TicketModel is the persistence model for support tickets
type TicketModel struct {
	BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;not null;index"`
	Subject   string    `gorm:"type:varchar(200);not null"`
	Message   string    `gorm:"type:text;not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'open';index"`

	Reply     string     `gorm:"type:text"`
	RepliedBy *uuid.UUID `gorm:"type:uuid"`
	RepliedAt *time.Time
}

// TableName returns the table name for GORM
func (TicketModel) TableName() string {
	return "tickets"
}

// ToDomain converts the persistence model to a domain Ticket
func (m *TicketModel) ToDomain() *support.Ticket {
	return &support.Ticket{
		BaseEntity: m.BaseModel.ToDomain(),
		AccountID:  m.AccountID,
		Subject:    m.Subject,
		Message:    m.Message,
		Status:     support.TicketStatus(m.Status),
		Reply:      m.Reply,
		RepliedBy:  m.RepliedBy,
		RepliedAt:  m.RepliedAt,
	}
}

// FromDomain populates the persistence model from a domain Ticket
func (m *TicketModel) FromDomain(t *support.Ticket) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.AccountID = t.AccountID
	m.Subject = t.Subject
	m.Message = t.Message
	m.Status = string(t.Status)
	m.Reply = t.Reply
	m.RepliedBy = t.RepliedBy
	m.RepliedAt = t.RepliedAt
}

// APIKeyModel is the persistence model for external API keys
type APIKeyModel struct {
	BaseModel
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Key        string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	Label      string    `gorm:"type:varchar(100)"`
	Active     bool      `gorm:"not null;default:true"`
	LastUsedAt *time.Time
}

// TableName returns the table name for GORM
func (APIKeyModel) TableName() string {
	return "api_keys"
}

// ToDomain converts the persistence model to a domain APIKey
func (m *APIKeyModel) ToDomain() *support.APIKey {
	return &support.APIKey{
		BaseEntity: m.BaseModel.ToDomain(),
		AccountID:  m.AccountID,
		Key:        m.Key,
		Label:      m.Label,
		Active:     m.Active,
		LastUsedAt: m.LastUsedAt,
	}
}

// FromDomain populates the persistence model from a domain APIKey
func (m *APIKeyModel) FromDomain(k *support.APIKey) {
	m.FromDomainBaseEntity(k.BaseEntity)
	m.AccountID = k.AccountID
	m.Key = k.Key
	m.Label = k.Label
	m.Active = k.Active
	m.LastUsedAt = k.LastUsedAt
}

// SettingModel is the persistence model for runtime platform settings
type SettingModel struct {
	Key       string    `gorm:"type:varchar(100);primary_key"`
	Value     string    `gorm:"type:varchar(200);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}
