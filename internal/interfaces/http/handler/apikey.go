package handler

import (
	supportapp "github.com/Lion1208/fastpay/internal/application/support"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIKeyHandler handles external API key HTTP requests
type APIKeyHandler struct {
	BaseHandler
	apiKeyService *supportapp.APIKeyService
}

// NewAPIKeyHandler creates a new API key handler
func NewAPIKeyHandler(apiKeyService *supportapp.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
	}
}

// CreateKey godoc
// @Summary      Issue an API key
// @Description  Creates a key for the external charge API; the secret is returned once
// @Tags         apikeys
// @Accept       json
// @Produce      json
// @Param        request body supportapp.CreateAPIKeyInput true "Key data"
// @Success      201 {object} dto.Response{data=supportapp.APIKeyResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /apikeys [post]
func (h *APIKeyHandler) CreateKey(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input supportapp.CreateAPIKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	response, err := h.apiKeyService.CreateKey(c.Request.Context(), accountID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// ListKeys godoc
// @Summary      List API keys
// @Description  Lists the partner's keys without secrets
// @Tags         apikeys
// @Produce      json
// @Success      200 {object} dto.Response{data=[]supportapp.APIKeyResponse}
// @Router       /apikeys [get]
func (h *APIKeyHandler) ListKeys(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	keys, err := h.apiKeyService.ListKeys(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, keys)
}

// RevokeKey godoc
// @Summary      Revoke an API key
// @Description  Deactivates one of the partner's keys
// @Tags         apikeys
// @Produce      json
// @Param        id path string true "Key ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /apikeys/{id} [delete]
func (h *APIKeyHandler) RevokeKey(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid key ID")
		return
	}

	if err := h.apiKeyService.RevokeKey(c.Request.Context(), accountID, keyID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
