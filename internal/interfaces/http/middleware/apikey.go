package middleware

import (
	"net/http"
	"strings"

	"github.com/Lion1208/fastpay/internal/application/support"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// API key context keys
const (
	APIKeyAccountKey   = "apikey_account"
	APIKeyAccountIDKey = "apikey_account_id"
)

// APIKeyAuthMiddleware authenticates external API calls with a
// Bearer pk_ key and stores the owning account in context
func APIKeyAuthMiddleware(apiKeyService *support.APIKeyService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
			abortAPIKeyAuth(c)
			return
		}

		rawKey := strings.TrimPrefix(authHeader, BearerPrefix)
		acc, err := apiKeyService.Authenticate(c.Request.Context(), rawKey)
		if err != nil {
			if logger != nil {
				logger.Warn("API key authentication failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			abortAPIKeyAuth(c)
			return
		}

		c.Set(APIKeyAccountKey, acc)
		c.Set(APIKeyAccountIDKey, acc.ID.String())
		c.Next()
	}
}

func abortAPIKeyAuth(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": "A valid API key is required",
		},
	})
}

// GetAPIKeyAccountID retrieves the key owner's account ID from context
func GetAPIKeyAccountID(c *gin.Context) string {
	if accountID, exists := c.Get(APIKeyAccountIDKey); exists {
		if id, ok := accountID.(string); ok {
			return id
		}
	}
	return ""
}
