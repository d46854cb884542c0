package utils

import (
	"github.com/gin-gonic/gin"

	"GoGallery/config"
)

// FailStatus writes an error JSON response. Outside production mode the
// underlying error detail is included for debugging.
func FailStatus(c *gin.Context, status int, msg string, err error) {
	body := gin.H{"msg": msg}
	if err != nil && !config.IsProduction() {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}
