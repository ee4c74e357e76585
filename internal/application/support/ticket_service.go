package support

import (
	"context"

	"github.com/Lion1208/fastpay/internal/domain/shared"
	"github.com/Lion1208/fastpay/internal/domain/support"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TicketService handles partner support tickets
type TicketService struct {
	ticketRepo support.TicketRepository
	logger     *zap.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(ticketRepo support.TicketRepository, logger *zap.Logger) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

// CreateTicket opens a new ticket for the account
func (s *TicketService) CreateTicket(ctx context.Context, accountID uuid.UUID, input CreateTicketInput) (*TicketResponse, error) {
	ticket, err := support.NewTicket(accountID, input.Subject, input.Message)
	if err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info("Support ticket opened",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("account_id", accountID.String()))

	response := ToTicketResponse(ticket)
	return &response, nil
}

// GetTicket returns one ticket, scoped to its owner unless the caller
// is an admin
func (s *TicketService) GetTicket(ctx context.Context, ticketID, callerID uuid.UUID, isAdmin bool) (*TicketResponse, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && ticket.AccountID != callerID {
		return nil, shared.ErrNotFound
	}
	response := ToTicketResponse(ticket)
	return &response, nil
}

// ListMine lists the caller's own tickets
func (s *TicketService) ListMine(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]TicketResponse, int64, error) {
	return s.list(ctx, support.TicketFilter{
		AccountID: &accountID,
		Page:      page,
		PageSize:  pageSize,
	})
}

// ListAll lists tickets for admin review, optionally by status
func (s *TicketService) ListAll(ctx context.Context, status string, page, pageSize int) ([]TicketResponse, int64, error) {
	filter := support.TicketFilter{Page: page, PageSize: pageSize}
	if status != "" {
		ts := support.TicketStatus(status)
		filter.Status = &ts
	}
	return s.list(ctx, filter)
}

// Reply records an admin answer on an open ticket
func (s *TicketService) Reply(ctx context.Context, ticketID, adminID uuid.UUID, input ReplyTicketInput) (*TicketResponse, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := ticket.Answer(adminID, input.Reply); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info("Support ticket answered",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("admin_id", adminID.String()))

	response := ToTicketResponse(ticket)
	return &response, nil
}

// Close finishes a ticket. The owner or an admin may close it.
func (s *TicketService) Close(ctx context.Context, ticketID, callerID uuid.UUID, isAdmin bool) (*TicketResponse, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && ticket.AccountID != callerID {
		return nil, shared.ErrNotFound
	}
	ticket.Close()
	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, err
	}
	response := ToTicketResponse(ticket)
	return &response, nil
}

func (s *TicketService) list(ctx context.Context, filter support.TicketFilter) ([]TicketResponse, int64, error) {
	tickets, total, err := s.ticketRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		responses[i] = ToTicketResponse(t)
	}
	return responses, total, nil
}
