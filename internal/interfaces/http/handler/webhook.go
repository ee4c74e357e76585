package handler

import (
	"io"
	"net/http"

	ledgerapp "github.com/Lion1208/fastpay/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody caps webhook payload reads
const maxWebhookBody = 1 << 20 // 1 MiB

// SignatureHeader carries the processor's HMAC over the raw body
const SignatureHeader = "X-Signature"

// WebhookHandler handles payment processor callbacks
type WebhookHandler struct {
	BaseHandler
	settlementService *ledgerapp.SettlementService
	logger            *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(settlementService *ledgerapp.SettlementService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		settlementService: settlementService,
		logger:            logger,
	}
}

// HandleFastDePix godoc
// @Summary      FastDePix payment webhook
// @Description  Verifies the signature and settles the referenced deposit
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Signature header string true "HMAC-SHA256 of the raw body"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /webhooks/fastdepix [post]
func (h *WebhookHandler) HandleFastDePix(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.BadRequest(c, "Failed to read request body")
		return
	}

	signature := c.GetHeader(SignatureHeader)

	if err := h.settlementService.ProcessWebhook(c.Request.Context(), body, signature); err != nil {
		h.logger.Warn("Webhook rejected",
			zap.String("remote_addr", c.ClientIP()),
			zap.Error(err))
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
