package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"GoGallery/internal/repo"
)

var startTime = time.Now()

// Health reports process uptime and database connectivity. No auth.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   int64(time.Since(startTime).Seconds()),
		"database": repo.Ping(),
	})
}
