package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/suitewell/suitewell-backend/internal/logger"
)

type AdminKeyMiddleware struct {
	log *logger.Logger
	key string
}

func NewAdminKeyMiddleware(log *logger.Logger, key string) *AdminKeyMiddleware {
	return &AdminKeyMiddleware{log: log.With("middleware", "AdminKeyMiddleware"), key: key}
}

// RequireAdminKey guards the provisioning routes. With no key configured
// the routes are disabled outright rather than left open.
func (am *AdminKeyMiddleware) RequireAdminKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.key == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API disabled"})
			return
		}
		provided := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(am.key)) != 1 {
			am.log.Warn("admin key rejected", "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
