package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultWebhookBodyLimit bounds courier webhook payloads. Carrier pushes
// are small JSON documents; anything larger is rejected before parsing.
const DefaultWebhookBodyLimit int64 = 1 << 20

// BodyLimit rejects requests whose body exceeds maxBytes
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
