package handler

import (
	"errors"

	ledgerapp "github.com/Lion1208/fastpay/internal/application/ledger"
	"github.com/Lion1208/fastpay/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ExternalHandler handles the server-to-server charge API
// authenticated with API keys
type ExternalHandler struct {
	BaseHandler
	depositService *ledgerapp.DepositService
}

// NewExternalHandler creates a new external API handler
func NewExternalHandler(depositService *ledgerapp.DepositService) *ExternalHandler {
	return &ExternalHandler{
		depositService: depositService,
	}
}

// getKeyAccountID extracts the key owner's account ID set by the API key middleware
func getKeyAccountID(c *gin.Context) (uuid.UUID, error) {
	accountIDStr := middleware.GetAPIKeyAccountID(c)
	if accountIDStr == "" {
		return uuid.Nil, errors.New("API key account not found in context")
	}
	return uuid.Parse(accountIDStr)
}

// CreateCharge godoc
// @Summary      Create a charge
// @Description  Opens a PIX charge on behalf of the key's account
// @Tags         external
// @Accept       json
// @Produce      json
// @Param        request body CreateDepositRequest true "Charge data"
// @Success      201 {object} dto.Response{data=ledgerapp.DepositResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /charges [post]
func (h *ExternalHandler) CreateCharge(c *gin.Context) {
	accountID, err := getKeyAccountID(c)
	if err != nil {
		h.Unauthorized(c, "A valid API key is required")
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

// GetCharge godoc
// @Summary      Get a charge
// @Description  Returns one of the key account's charges
// @Tags         external
// @Produce      json
// @Param        id path string true "Charge ID"
// @Success      200 {object} dto.Response{data=ledgerapp.DepositResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /charges/{id} [get]
func (h *ExternalHandler) GetCharge(c *gin.Context) {
	accountID, err := getKeyAccountID(c)
	if err != nil {
		h.Unauthorized(c, "A valid API key is required")
		return
	}

	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}

	response, err := h.depositService.GetDeposit(c.Request.Context(), accountID, chargeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
