package support

import (
	"strings"
	"time"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/google/uuid"
)

// TicketStatus represents the support ticket lifecycle
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketAnswered TicketStatus = "answered"
	TicketClosed   TicketStatus = "closed"
)

// Ticket is a partner support request
type Ticket struct {
	shared.BaseEntity

	AccountID uuid.UUID
	Subject   string
	Message   string
	Status    TicketStatus

	Reply     string
	RepliedBy *uuid.UUID
	RepliedAt *time.Time
}

// NewTicket creates an open ticket
func NewTicket(accountID uuid.UUID, subject, message string) (*Ticket, error) {
	subject = strings.TrimSpace(subject)
	message = strings.TrimSpace(message)
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID is required")
	}
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_TICKET", "Ticket subject cannot be empty")
	}
	if message == "" {
		return nil, shared.NewDomainError("INVALID_TICKET", "Ticket message cannot be empty")
	}
	return &Ticket{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Subject:    subject,
		Message:    message,
		Status:     TicketOpen,
	}, nil
}

// Answer records an admin reply
func (t *Ticket) Answer(adminID uuid.UUID, reply string) error {
	if t.Status == TicketClosed {
		return shared.ErrInvalidState
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return shared.NewDomainError("INVALID_TICKET", "Reply cannot be empty")
	}
	now := time.Now()
	t.Reply = reply
	t.RepliedBy = &adminID
	t.RepliedAt = &now
	t.Status = TicketAnswered
	return nil
}

// Close finishes the ticket
func (t *Ticket) Close() {
	t.Status = TicketClosed
}
