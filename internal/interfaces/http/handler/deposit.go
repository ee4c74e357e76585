package handler

import (
	ledgerapp "github.com/Lion1208/fastpay/internal/application/ledger"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DepositHandler handles PIX deposit HTTP requests
type DepositHandler struct {
	BaseHandler
	depositService *ledgerapp.DepositService
	// receiptService is nil when receipt rendering is disabled
	receiptService *ledgerapp.ReceiptService
}

// NewDepositHandler creates a new deposit handler
func NewDepositHandler(depositService *ledgerapp.DepositService, receiptService *ledgerapp.ReceiptService) *DepositHandler {
	return &DepositHandler{
		depositService: depositService,
		receiptService: receiptService,
	}
}

// CreateDepositRequest represents the request body for opening a PIX charge
type CreateDepositRequest struct {
	Amount        string `json:"amount" binding:"required"`
	PayerName     string `json:"payer_name" binding:"omitempty,max=120"`
	PayerDocument string `json:"payer_document" binding:"omitempty,max=18"`
}

// CreateDeposit godoc
// @Summary      Create a PIX deposit
// @Description  Opens a charge with the payment processor and returns the QR code
// @Tags         deposits
// @Accept       json
// @Produce      json
// @Param        request body CreateDepositRequest true "Deposit data"
// @Success      201 {object} dto.Response{data=ledgerapp.DepositResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /deposits [post]
func (h *DepositHandler) CreateDeposit(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	response, err := h.depositService.CreateDeposit(c.Request.Context(), ledgerapp.CreateDepositInput{
		AccountID:     accountID,
		Amount:        amount,
		PayerName:     req.PayerName,
		PayerDocument: req.PayerDocument,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// GetDeposit godoc
// @Summary      Get a deposit
// @Description  Returns one of the partner's deposits
// @Tags         deposits
// @Produce      json
// @Param        id path string true "Deposit ID"
// @Success      200 {object} dto.Response{data=ledgerapp.DepositResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /deposits/{id} [get]
func (h *DepositHandler) GetDeposit(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deposit ID")
		return
	}

	response, err := h.depositService.GetDeposit(c.Request.Context(), accountID, depositID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListDeposits godoc
// @Summary      List deposits
// @Description  Lists the partner's deposits, optionally by status
// @Tags         deposits
// @Produce      json
// @Param        status query string false "Filter by status" Enums(pending, paid, expired, failed)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ledgerapp.DepositResponse}
// @Router       /deposits [get]
func (h *DepositHandler) ListDeposits(c *gin.Context) {
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

	var status *ledger.TransactionStatus
	if s := c.Query("status"); s != "" {
		ts := ledger.TransactionStatus(s)
		if !ts.IsValid() {
			h.BadRequest(c, "Invalid status filter")
			return
		}
		status = &ts
	}

	deposits, total, err := h.depositService.ListDeposits(c.Request.Context(), accountID, status, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, deposits, total, req.Page, req.PageSize)
}

// GetDepositReceipt godoc
// @Summary      Get a deposit receipt
// @Description  Returns a presigned download link for the PDF receipt of a paid deposit
// @Tags         deposits
// @Produce      json
// @Param        id path string true "Deposit ID"
// @Success      200 {object} dto.Response{data=ledgerapp.ReceiptLinkResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /deposits/{id}/receipt [get]
func (h *DepositHandler) GetDepositReceipt(c *gin.Context) {
	if h.receiptService == nil {
		h.NotFound(c, "Receipts are not enabled")
		return
	}

	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid deposit ID")
		return
	}

	link, err := h.receiptService.GetDepositReceipt(c.Request.Context(), accountID, depositID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, link)
}
