package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estate-market/pkg/config"
	"estate-market/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	InquiryQueueName  = "inquiry_notifications"
	InquiryExchange   = "inquiries"
	NewInquiryRouting = "new_inquiry"
	StatusRouting     = "inquiry_status"

	maxPriority = 10
)

// Task is a unit of seller/buyer notification work.
type Task struct {
	Type        string    `json:"type"`
	Priority    int       `json:"priority"`
	InquiryID   string    `json:"inquiry_id"`
	ListingID   string    `json:"listing_id"`
	ListingName string    `json:"listing_title"`
	RecipientID string    `json:"recipient_id"`
	ActorID     string    `json:"actor_id"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(channel); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	log.Info("[RABBITMQ] Connected at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

func declareTopology(channel *amqp.Channel) error {
	if err := channel.ExchangeDeclare(
		InquiryExchange, // name
		"direct",        // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := channel.QueueDeclare(
		InquiryQueueName, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		amqp.Table{"x-max-priority": maxPriority},
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range []string{NewInquiryRouting, StatusRouting} {
		if err := channel.QueueBind(InquiryQueueName, key, InquiryExchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to %s: %w", key, err)
		}
	}
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func clampPriority(p int) uint8 {
	if p < 0 {
		return 0
	}
	if p > maxPriority {
		return maxPriority
	}
	return uint8(p)
}

// PublishTask routes the task by its Type.
func (c *Client) PublishTask(ctx context.Context, task Task) error {
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		InquiryExchange, // exchange
		task.Type,       // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			Priority:     clampPriority(task.Priority),
			DeliveryMode: amqp.Persistent,
			Timestamp:    task.CreatedAt,
		},
	)
	if err != nil {
		c.logger.Error("[RABBITMQ] Failed to publish task type=%s inquiry_id=%s: %v", task.Type, task.InquiryID, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[RABBITMQ] Published task type=%s inquiry_id=%s recipient=%s", task.Type, task.InquiryID, task.RecipientID)
	return nil
}

// ConsumeTasks acks handled tasks, drops undecodable ones and requeues failures.
func (c *Client) ConsumeTasks(handler func(task Task) error) error {
	msgs, err := c.channel.Consume(
		InquiryQueueName, // queue
		"",               // consumer
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[RABBITMQ] Started consuming from %s", InquiryQueueName)

	go func() {
		for msg := range msgs {
			var task Task
			if err := json.Unmarshal(msg.Body, &task); err != nil {
				c.logger.Error("[RABBITMQ] Failed to unmarshal task: %v, body=%s", err, string(msg.Body))
				msg.Nack(false, false)
				continue
			}

			if err := handler(task); err != nil {
				c.logger.Error("[RABBITMQ] Handler failed for task type=%s inquiry_id=%s: %v", task.Type, task.InquiryID, err)
				msg.Nack(false, !msg.Redelivered)
				continue
			}

			msg.Ack(false)
		}
		c.logger.Warn("[RABBITMQ] Delivery channel closed, consumer stopped")
	}()

	return nil
}

func (c *Client) QueueLength() (int, error) {
	queue, err := c.channel.QueueInspect(InquiryQueueName)
	if err != nil {
		return 0, err
	}
	return queue.Messages, nil
}
