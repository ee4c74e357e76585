package support

import (
	"context"

	"github.com/google/uuid"
)

// TicketFilter contains filter options for listing tickets
type TicketFilter struct {
	AccountID *uuid.UUID
	Status    *TicketStatus
	Page      int
	PageSize  int
}

// TicketRepository defines the interface for ticket persistence
type TicketRepository interface {
	// Create creates a new ticket
	Create(ctx context.Context, t *Ticket) error

	// Update persists reply and status changes
	Update(ctx context.Context, t *Ticket) error

	// FindByID finds a ticket by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)

	// List lists tickets matching the filter
	List(ctx context.Context, filter TicketFilter) ([]*Ticket, int64, error)
}

// APIKeyRepository defines the interface for API key persistence
type APIKeyRepository interface {
	// Create creates a new key
	Create(ctx context.Context, k *APIKey) error

	// Update persists revocation and usage changes
	Update(ctx context.Context, k *APIKey) error

	// FindByKey finds an active key by its secret value
	FindByKey(ctx context.Context, key string) (*APIKey, error)

	// FindByID finds a key by ID
	FindByID(ctx context.Context, id uuid.UUID) (*APIKey, error)

	// ListByAccount lists an account's keys
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*APIKey, error)
}
