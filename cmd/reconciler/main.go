package main

import (
	"GoGallery/config"
	"GoGallery/internal/repo"
	"GoGallery/internal/storage"
	"GoGallery/internal/worker"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.InitConfig()
	if config.AppConfig.RabbitMQURL == "" {
		log.Fatal("RABBITMQ_URL (or RABBITMQ_HOST) is required for the reconciler")
	}
	repo.InitMysql()
	storage.InitMinio()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("reconcile worker started")
	if err := worker.RunReconcileWorker(ctx); err != nil {
		log.Fatalf("reconcile worker stopped: %v", err)
	}
}
