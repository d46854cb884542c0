package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"GoGallery/config"
)

// CORSMiddleware enables CORS for the configured browser origin.
// With no ALLOWED_ORIGIN configured it echoes the request origin.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := config.AppConfig.AllowedOrigin
		switch {
		case allowed != "":
			c.Header("Access-Control-Allow-Origin", allowed)
			c.Header("Vary", "Origin")
		case origin != "":
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		default:
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
