package worker

import (
	"GoGallery/config"
	"GoGallery/internal/mq"
	"GoGallery/internal/repo"
	"GoGallery/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/minio/minio-go/v7"
	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/time/rate"
)

// RunReconcileWorker consumes orphan events and removes the stored objects
// that partially failed mutations left behind, closing the matching
// operation-log intents.
func RunReconcileWorker(ctx context.Context) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}
	if err := client.Channel.Qos(1, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueOrphans,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	burst := config.AppConfig.ReconcileBurst
	if burst <= 0 {
		burst = 1
	}
	rateLimit := config.AppConfig.ReconcileRate
	var limiter *rate.Limiter
	if rateLimit <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}

	oplog := repo.NewOpLog(repo.Db)

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("reconcile worker: delivery channel closed")
			}
			handleOrphanMessage(ctx, oplog, limiter, delivery)
		}
	}
}

func handleOrphanMessage(ctx context.Context, oplog *repo.OpLogDB, limiter *rate.Limiter, delivery amqp.Delivery) {
	var event mq.OrphanEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		log.Printf("reconcile worker: invalid message: %v", err)
		_ = delivery.Ack(false)
		return
	}

	if err := limiter.Wait(ctx); err != nil {
		_ = delivery.Nack(false, true)
		return
	}

	err := storage.Default.RemoveObject(ctx, event.Bucket, event.Object)
	if err != nil && !objectAlreadyGone(err) {
		log.Printf("reconcile worker: remove %s/%s failed: %v", event.Bucket, event.Object, err)
		_ = delivery.Nack(false, true)
		return
	}

	if event.OpID != "" {
		if err := oplog.MarkReconciled(ctx, event.OpID); err != nil {
			log.Printf("reconcile worker: mark op %s reconciled failed: %v", event.OpID, err)
		}
	}
	log.Printf("reconcile worker: removed orphan %s/%s (%s)", event.Bucket, event.Object, event.Reason)
	_ = delivery.Ack(false)
}

func objectAlreadyGone(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}
