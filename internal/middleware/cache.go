package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoStore sets Cache-Control so per-caller responses are never kept by
// shared caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Writer.Header().Add("Vary", "Authorization")
		c.Next()
	}
}
