package mq

import (
	"GoGallery/config"
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeOrphans = "gallery.orphan.exchange"
	QueueOrphans    = "gallery.orphan.queue"
	RoutingOrphan   = "orphan"
)

// OrphanEvent describes a stored object left behind by a partially failed
// mutation. The reconcile worker removes the object and closes the intent.
type OrphanEvent struct {
	OpID       string    `json:"op_id"`
	UserID     uint64    `json:"user_id"`
	Bucket     string    `json:"bucket"`
	Object     string    `json:"object"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Client struct {
	Conn      *amqp.Connection
	Channel   *amqp.Channel
	publishMu sync.Mutex
}

var publisherMu sync.Mutex
var publisher *Client

func Dial() (*Client, error) {
	conn, err := amqp.Dial(config.AppConfig.RabbitMQURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{Conn: conn, Channel: ch}, nil
}

// GetPublisher returns a shared publisher client, redialing when the
// previous connection went away.
func GetPublisher() (*Client, error) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		if !publisher.Conn.IsClosed() && !publisher.Channel.IsClosed() {
			return publisher, nil
		}
		publisher.Close()
		publisher = nil
	}
	client, err := Dial()
	if err != nil {
		return nil, err
	}
	if err := client.DeclareTopology(); err != nil {
		client.Close()
		return nil, err
	}
	publisher = client
	return publisher, nil
}

func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.Channel != nil {
		_ = c.Channel.Close()
	}
	if c.Conn != nil {
		_ = c.Conn.Close()
	}
}

func (c *Client) DeclareTopology() error {
	if err := c.Channel.ExchangeDeclare(
		ExchangeOrphans,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	if _, err := c.Channel.QueueDeclare(
		QueueOrphans,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return err
	}
	return c.Channel.QueueBind(
		QueueOrphans,
		RoutingOrphan,
		ExchangeOrphans,
		false,
		nil,
	)
}

// PublishOrphan publishes an orphaned-object event.
func (c *Client) PublishOrphan(ctx context.Context, event OrphanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.publish(ctx, ExchangeOrphans, RoutingOrphan, body)
}

func (c *Client) publish(ctx context.Context, exchange, key string, body []byte) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	return c.Channel.PublishWithContext(
		ctx,
		exchange,
		key,
		false,
		false,
		msg,
	)
}

// LazyPublisher publishes through the shared publisher, dialing on first
// use and redialing after connection loss. Safe to hold before RabbitMQ is
// reachable.
type LazyPublisher struct{}

// PublishOrphan publishes an orphaned-object event via the shared client.
func (LazyPublisher) PublishOrphan(ctx context.Context, event OrphanEvent) error {
	client, err := GetPublisher()
	if err != nil {
		return err
	}
	return client.PublishOrphan(ctx, event)
}
