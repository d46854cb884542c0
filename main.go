package main

import (
	"GoGallery/config"
	"GoGallery/internal/handler"
	"GoGallery/internal/mq"
	"GoGallery/internal/repo"
	"GoGallery/internal/service"
	"GoGallery/internal/storage"
	"GoGallery/router"
	"GoGallery/utils"
	"log"
)

// main initializes services and starts the HTTP server.
func main() {
	config.InitConfig()
	if errs := config.Validate(); len(errs) > 0 {
		for _, err := range errs {
			log.Println("config:", err)
		}
		log.Fatal("invalid configuration, refusing to start")
	}

	repo.InitMysql()
	repo.InitRedis()
	storage.InitMinio()

	var orphans service.OrphanPublisher
	if config.AppConfig.RabbitMQURL != "" {
		orphans = mq.LazyPublisher{}
	} else {
		log.Println("rabbitmq not configured, orphan events will only be logged")
	}

	gallerySvc := service.NewGalleryService(
		repo.NewMediaRepo(repo.Db),
		storage.Default,
		repo.NewOpLog(repo.Db),
		utils.NewRedisFolderIndex(repo.Redis),
		service.NewFFProbe(config.AppConfig.FFprobeBin),
		orphans,
		config.AppConfig.BucketName,
	)
	handler.SetGalleryService(gallerySvc)

	router := router.InitRouter()

	router.Run(":8000")
}
