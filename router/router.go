package router

import (
	"GoGallery/config"
	"GoGallery/internal/handler"
	"GoGallery/internal/repo"
	"GoGallery/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	r.GET("/health", handler.Health)

	api := r.Group("/api")
	api.Use(utils.RateLimitMiddleware(
		repo.Redis,
		"global",
		config.AppConfig.RateLimitRequests,
		config.AppConfig.RateLimitWindow,
	))

	auth := api.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
	}

	gallery := api.Group("/gallery")
	gallery.Use(utils.AuthMiddleware())
	{
		uploadLimit := utils.RateLimitMiddleware(
			repo.Redis,
			"upload",
			config.AppConfig.UploadRateLimitMax,
			config.AppConfig.UploadRateLimitWindow,
		)
		maxBytes := utils.MaxBytesMiddleware(config.AppConfig.MaxUploadBytes)

		gallery.POST("/upload", uploadLimit, maxBytes, handler.Upload)
		gallery.GET("/files", handler.Files)
		gallery.DELETE("/delete/:fileId", handler.Delete)
		gallery.POST("/delete-multiple", handler.DeleteMultiple)
		gallery.PUT("/rename/:fileId", handler.Rename)
		gallery.PUT("/update/:fileId", uploadLimit, maxBytes, handler.Update)
	}
	return r
}
