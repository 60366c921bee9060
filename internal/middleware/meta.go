package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kaizen-portal-api/pkg/response"
)

// WithResponseMeta stamps the request start so envelopes report processing_time_ms.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Begin(c)
		c.Next()
	}
}

// SetCacheHit records whether the payload was served from the dashboard cache.
func SetCacheHit(c *gin.Context, hit bool) {
	response.SetMeta(c, "cache_hit", hit)
}
