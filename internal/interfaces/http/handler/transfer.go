package handler

import (
	ledgerapp "github.com/Lion1208/fastpay/internal/application/ledger"
	"github.com/Lion1208/fastpay/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// TransferHandler handles internal transfer HTTP requests
type TransferHandler struct {
	BaseHandler
	transferService *ledgerapp.TransferService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService *ledgerapp.TransferService) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// SendTransferRequest represents the request body for an internal transfer
type SendTransferRequest struct {
	RecipientCode string `json:"recipient_code" binding:"required,min=4,max=16"`
	Amount        string `json:"amount" binding:"required"`
}

// SendTransfer godoc
// @Summary      Send an internal transfer
// @Description  Moves balance to another partner identified by code; sender pays the fee
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body SendTransferRequest true "Transfer data"
// @Success      201 {object} dto.Response{data=ledgerapp.TransferResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transfers [post]
func (h *TransferHandler) SendTransfer(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SendTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	response, err := h.transferService.SendTransfer(c.Request.Context(), ledgerapp.SendTransferInput{
		SenderID:      accountID,
		RecipientCode: req.RecipientCode,
		Amount:        amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// PreviewTransfer godoc
// @Summary      Preview an internal transfer
// @Description  Shows the fee and what the recipient would receive
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body SendTransferRequest true "Transfer data"
// @Success      200 {object} dto.Response{data=ledgerapp.TransferPreview}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transfers/preview [post]
func (h *TransferHandler) PreviewTransfer(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req SendTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	response, err := h.transferService.PreviewTransfer(c.Request.Context(), ledgerapp.SendTransferInput{
		SenderID:      accountID,
		RecipientCode: req.RecipientCode,
		Amount:        amount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListTransfers godoc
// @Summary      List transfers
// @Description  Lists transfers the partner sent or received
// @Tags         transfers
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ledgerapp.TransferResponse}
// @Router       /transfers [get]
func (h *TransferHandler) ListTransfers(c *gin.Context) {
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

	transfers, total, err := h.transferService.ListTransfers(c.Request.Context(), accountID, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, transfers, total, req.Page, req.PageSize)
}
