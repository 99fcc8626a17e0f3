package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// amqpChannel is the part of *amqp.Channel the wrapper uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

type RabbitMQ struct {
	conn    *amqp.Connection
	channel amqpChannel
	logger  *logrus.Logger
}

func NewRabbitMQ(url string, logger *logrus.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	logger.Info("Connected to RabbitMQ")

	r := newRabbitMQFrom(channel, logger)
	r.conn = conn
	return r, nil
}

func newRabbitMQFrom(channel amqpChannel, logger *logrus.Logger) *RabbitMQ {
	return &RabbitMQ{channel: channel, logger: logger}
}

// DeclareQueue creates a queue if it doesn't exist
func (r *RabbitMQ) DeclareQueue(name string) error {
	_, err := r.channel.QueueDeclare(
		name,  // queue name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	r.logger.WithField("queue", name).Info("Queue declared")
	return nil
}

// Publish sends a persistent message to a queue through the default exchange
func (r *RabbitMQ) Publish(ctx context.Context, queue, key string, body []byte) error {
	err := r.channel.PublishWithContext(ctx,
		"",    // exchange
		queue, // routing key (queue name)
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    key,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"queue":      queue,
		"message_id": key,
	}).Debug("Message published")
	return nil
}

// Consume receives messages from a queue
func (r *RabbitMQ) Consume(queue string) (<-chan amqp.Delivery, error) {
	messages, err := r.channel.Consume(
		queue, // queue name
		"",    // consumer tag
		false, // auto-ack (false = manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	r.logger.WithField("queue", queue).Info("Listening on queue")
	return messages, nil
}

// Close closes the connection
func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
