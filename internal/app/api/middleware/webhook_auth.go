package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/pkg/logctx"
	"github.com/ezstay/payrecon/pkg/response"
)

const apiKeyScheme = "Apikey"

// WebhookAPIKeyMiddleware checks the "Authorization: Apikey <key>" header
// SePay sends when a key is configured on its side. An empty key accepts
// every request.
func WebhookAPIKeyMiddleware(key string, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		scheme, got, _ := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		if !strings.EqualFold(scheme, apiKeyScheme) || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(key)) != 1 {
			logctx.FromGin(c, log).Warnw("webhook_unauthorized", "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, nil))
			return
		}
		c.Next()
	}
}
