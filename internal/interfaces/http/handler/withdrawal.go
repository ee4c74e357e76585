package handler

import (
	ledgerapp "github.com/Lion1208/fastpay/internal/application/ledger"
	"github.com/Lion1208/fastpay/internal/domain/ledger"
	"github.com/Lion1208/fastpay/internal/domain/shared/valueobject"
	"github.com/Lion1208/fastpay/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WithdrawalHandler handles payout HTTP requests
type WithdrawalHandler struct {
	BaseHandler
	withdrawalService *ledgerapp.WithdrawalService
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(withdrawalService *ledgerapp.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
	}
}

// RequestWithdrawalRequest represents the request body for a payout
type RequestWithdrawalRequest struct {
	Amount     string `json:"amount" binding:"required"`
	PixKey     string `json:"pix_key" binding:"omitempty,max=140"`
	PixKeyType string `json:"pix_key_type" binding:"omitempty,oneof=cpf email phone random"`
}

// PreviewWithdrawalRequest represents the request body for a payout preview
type PreviewWithdrawalRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// RequestWithdrawal godoc
// @Summary      Request a withdrawal
// @Description  Places a payout request and holds amount plus fee from the balances
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        request body RequestWithdrawalRequest true "Withdrawal data"
// @Success      201 {object} dto.Response{data=ledgerapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /withdrawals [post]
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	response, err := h.withdrawalService.RequestWithdrawal(c.Request.Context(), ledgerapp.RequestWithdrawalInput{
		AccountID:  accountID,
		Amount:     amount,
		PixKey:     req.PixKey,
		PixKeyType: req.PixKeyType,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// PreviewWithdrawal godoc
// @Summary      Preview a withdrawal
// @Description  Shows the fee and balance split without placing a request
// @Tags         withdrawals
// @Accept       json
// @Produce      json
// @Param        request body PreviewWithdrawalRequest true "Preview data"
// @Success      200 {object} dto.Response{data=ledgerapp.WithdrawalResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /withdrawals/preview [post]
func (h *WithdrawalHandler) PreviewWithdrawal(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req PreviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	response, err := h.withdrawalService.PreviewWithdrawal(c.Request.Context(), accountID, valueobject.NewMoneyBRL(amount))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetWithdrawal godoc
// @Summary      Get a withdrawal
// @Description  Returns one of the partner's withdrawals
// @Tags         withdrawals
// @Produce      json
// @Param        id path string true "Withdrawal ID"
// @Success      200 {object} dto.Response{data=ledgerapp.WithdrawalResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /withdrawals/{id} [get]
func (h *WithdrawalHandler) GetWithdrawal(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid withdrawal ID")
		return
	}

	response, err := h.withdrawalService.GetWithdrawal(c.Request.Context(), accountID, withdrawalID, isAdmin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// ListWithdrawals godoc
// @Summary      List withdrawals
// @Description  Lists the partner's withdrawals, optionally by status
// @Tags         withdrawals
// @Produce      json
// @Param        status query string false "Filter by status" Enums(pending, approved, rejected, paid)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]ledgerapp.WithdrawalResponse}
// @Router       /withdrawals [get]
func (h *WithdrawalHandler) ListWithdrawals(c *gin.Context) {
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

	status, ok := withdrawalStatusFilter(c)
	if !ok {
		h.BadRequest(c, "Invalid status filter")
		return
	}

	withdrawals, total, err := h.withdrawalService.ListWithdrawals(c.Request.Context(), &accountID, status, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, withdrawals, total, req.Page, req.PageSize)
}

// withdrawalStatusFilter parses the optional status query parameter
func withdrawalStatusFilter(c *gin.Context) (*ledger.WithdrawalStatus, bool) {
	s := c.Query("status")
	if s == "" {
		return nil, true
	}
	ws := ledger.WithdrawalStatus(s)
	if !ws.IsValid() {
		return nil, false
	}
	return &ws, true
}
