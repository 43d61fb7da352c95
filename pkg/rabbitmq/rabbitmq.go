package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
)

// Message types carried on the notification exchange.
const (
	EventNewNotification   = "newNotification"
	EventNotificationsRead = "markNotificationsAsRead"
)

// Publisher is the publishing half of Client. The storefront double and the
// console depend on it so tests can substitute a recorder.
type Publisher interface {
	Publish(eventType string, payload any) error
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger

	mu sync.Mutex // amqp.Channel is not safe for concurrent publishes
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// NewClient dials the broker, opens a channel and declares the fanout exchange
// every console instance binds a queue to.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"fanout",     // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	log.Info().Str("exchange", cfg.Exchange).Msg("RabbitMQ client connected")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		log:      log,
	}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// Publish marshals payload to JSON and sends it on the exchange with the
// message Type set to eventType.
func (c *Client) Publish(eventType string, payload any) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		c.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventType,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	c.log.Debug().Str("type", eventType).Int("bytes", len(body)).Msg("event published")
	return nil
}

// Handler processes one delivery. Returning an error rejects the message;
// Requeue on the error decides whether it goes back on the queue.
type Handler func(msg amqp.Delivery) error

// RejectError tells Consume how to reject a delivery.
type RejectError struct {
	Err     error
	Requeue bool
}

func (e *RejectError) Error() string { return e.Err.Error() }
func (e *RejectError) Unwrap() error { return e.Err }

// Consume binds queue (a server-named exclusive queue when empty) to the
// exchange and processes deliveries in a goroutine until the channel closes.
func (c *Client) Consume(queue string, handler Handler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	exclusive := queue == ""
	q, err := c.channel.QueueDeclare(
		queue,      // name
		!exclusive, // durable
		exclusive,  // delete when unused
		exclusive,  // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}
	if err := c.channel.QueueBind(q.Name, "", c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", q.Name, err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.log.Info().Str("queue", q.Name).Msg("waiting for notification events")

	go func() {
		for msg := range msgs {
			Dispatch(msg, handler, c.log)
		}
	}()

	return nil
}

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Dispatch runs handler for msg and settles it: ack on success, nack with
// requeue unless the handler returned a *RejectError saying otherwise.
func Dispatch(msg amqp.Delivery, handler Handler, log zerolog.Logger) {
	settle(msg, handler(msg), msg.DeliveryTag, log)
}

func settle(ack Acknowledger, err error, tag uint64, log zerolog.Logger) {
	if err == nil {
		if ackErr := ack.Ack(false); ackErr != nil {
			log.Error().Err(ackErr).Uint64("tag", tag).Msg("error acking message")
		}
		return
	}

	requeue := true
	var rej *RejectError
	if errors.As(err, &rej) {
		requeue = rej.Requeue
	}
	log.Warn().Err(err).Uint64("tag", tag).Bool("requeue", requeue).Msg("error processing message")
	if nackErr := ack.Nack(false, requeue); nackErr != nil {
		log.Error().Err(nackErr).Uint64("tag", tag).Msg("error nacking message")
	}
}
