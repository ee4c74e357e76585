package handler

import (
	supportapp "github.com/Lion1208/fastpay/internal/application/support"
	"github.com/Lion1208/fastpay/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TicketHandler handles support ticket HTTP requests
type TicketHandler struct {
	BaseHandler
	ticketService *supportapp.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *supportapp.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
	}
}

// CreateTicket godoc
// @Summary      Open a support ticket
// @Description  Creates a ticket for the authenticated partner
// @Tags         support
// @Accept       json
// @Produce      json
// @Param        request body supportapp.CreateTicketInput true "Ticket data"
// @Success      201 {object} dto.Response{data=supportapp.TicketResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tickets [post]
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input supportapp.CreateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	response, err := h.ticketService.CreateTicket(c.Request.Context(), accountID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// GetTicket godoc
// @Summary      Get a ticket
// @Description  Returns one ticket, owner scoped unless the caller is an admin
// @Tags         support
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} dto.Response{data=supportapp.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tickets/{id} [get]
func (h *TicketHandler) GetTicket(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	response, err := h.ticketService.GetTicket(c.Request.Context(), ticketID, accountID, isAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListTickets godoc
// @Summary      List own tickets
// @Description  Lists the authenticated partner's tickets
// @Tags         support
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]supportapp.TicketResponse}
// @Router       /tickets [get]
func (h *TicketHandler) ListTickets(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	tickets, total, err := h.ticketService.ListMine(c.Request.Context(), accountID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, tickets, total, req.Page, req.PageSize)
}

// ListAllTickets godoc
// @Summary      List all tickets
// @Description  Lists tickets across accounts for admin review
// @Tags         admin
// @Produce      json
// @Param        status query string false "Filter by status" Enums(open, answered, closed)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]supportapp.TicketResponse}
// @Router       /admin/tickets [get]
func (h *TicketHandler) ListAllTickets(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	tickets, total, err := h.ticketService.ListAll(c.Request.Context(), c.Query("status"), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, tickets, total, req.Page, req.PageSize)
}

// ReplyTicket godoc
// @Summary      Reply to a ticket
// @Description  Records an admin answer on an open ticket
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body supportapp.ReplyTicketInput true "Reply data"
// @Success      200 {object} dto.Response{data=supportapp.TicketResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/tickets/{id}/reply [post]
func (h *TicketHandler) ReplyTicket(c *gin.Context) {
	adminID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	var input supportapp.ReplyTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	response, err := h.ticketService.Reply(c.Request.Context(), ticketID, adminID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// CloseTicket godoc
// @Summary      Close a ticket
// @Description  Finishes a ticket; the owner or an admin may close it
// @Tags         support
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} dto.Response{data=supportapp.TicketResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tickets/{id}/close [post]
func (h *TicketHandler) CloseTicket(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	response, err := h.ticketService.Close(c.Request.Context(), ticketID, accountID, isAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
