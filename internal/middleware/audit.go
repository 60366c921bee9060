package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/kaizen-portal-api/pkg/middleware/requestid"
)

// Audit records successful admin mutations as structured log lines.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("resource_id", c.Param("id")),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestid.Value(c)),
		}
		if actor, ok := ActorFromContext(c); ok {
			fields = append(fields,
				zap.String("user_id", actor.ID),
				zap.String("role", string(actor.Role)),
				zap.String("department", actor.Department),
			)
		}
		logger.Info("audit", fields...)
	}
}
