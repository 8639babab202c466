package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireOpsKey guards operator endpoints. An empty key disables them.
func RequireOpsKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": "error", "message": "ops endpoints are disabled"})
			return
		}
		got := c.GetHeader("X-Ops-Key")
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": "invalid ops key", "request_id": GetRequestID(c)})
			return
		}
		c.Next()
	}
}
