package util

import (
	"context"
	"fmt"
	"time"

	"ridelink/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient wraps a single AMQP connection and channel.
type RabbitMQClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQClient(cfg *config.Config) (*RabbitMQClient, error) {
	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	return &RabbitMQClient{
		conn:    conn,
		channel: channel,
	}, nil
}

// GetChannel returns the underlying channel (nil if the connection is down).
func (r *RabbitMQClient) GetChannel() *amqp.Channel {
	if r == nil || r.conn == nil || r.conn.IsClosed() {
		return nil
	}
	return r.channel
}

// Publish sends a persistent message to a direct exchange.
func (r *RabbitMQClient) Publish(exchange, routingKey string, body []byte) error {
	channel := r.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// DeclareDirectQueue declares a durable direct exchange with a bound queue.
func (r *RabbitMQClient) DeclareDirectQueue(exchange, queue, routingKey string) error {
	channel := r.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel not available")
	}

	if err := channel.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return err
	}

	return channel.QueueBind(queue, routingKey, exchange, false, nil)
}

// Close closes the channel and connection.
func (r *RabbitMQClient) Close() error {
	if r == nil {
		return nil
	}
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
