package rabbitmq

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// EventsQueue receives every order and prescription event published on the exchange.
const EventsQueue = "pharmacy_events"

// EventBindings are the routing key patterns bound to EventsQueue.
var EventBindings = []string{"order.#", "prescription.#"}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex // amqp channels are not safe for concurrent publishing
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// NewClient connects to RabbitMQ and declares the topic exchange, the events
// queue and its bindings.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Exchange == "" {
		return nil, fmt.Errorf("rabbitmq exchange name is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch, cfg.Exchange); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithFields(log.Fields{"exchange": cfg.Exchange, "queue": EventsQueue}).Info("RabbitMQ client connected")

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	_, err = ch.QueueDeclare(
		EventsQueue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", EventsQueue, err)
	}

	for _, key := range EventBindings {
		if err := ch.QueueBind(EventsQueue, key, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind %s to %s: %w", EventsQueue, key, err)
		}
	}
	return nil
}

// Exchange is the topic exchange the client declared.
func (c *Client) Exchange() string { return c.exchange }

// Close closes the RabbitMQ connection and channel.
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
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// Publish sends a persistent JSON message.
func (c *Client) Publish(exchange, routingKey string, body []byte) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	c.mu.Lock()
	err := c.channel.Publish(
		exchange,   // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.WithFields(log.Fields{"exchange": exchange, "routing_key": routingKey}).Debug("sent event")
	return nil
}

// ConsumeEvents starts a goroutine delivering messages from EventsQueue to
// handler. Successful deliveries are acked; failures are nacked and requeued.
func (c *Client) ConsumeEvents(handler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		EventsQueue, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.WithField("queue", EventsQueue).Info("waiting for events")

	go func() {
		for msg := range msgs {
			settle(msg, handler(msg))
		}
		log.WithField("queue", EventsQueue).Info("event consumer stopped")
	}()

	return nil
}

// Acknowledger is the subset of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func settle(msg amqp.Delivery, handlerErr error) {
	entry := log.WithFields(log.Fields{"delivery_tag": msg.DeliveryTag, "routing_key": msg.RoutingKey})
	if err := Settle(&msg, handlerErr); err != nil {
		entry.WithError(err).Error("failed to settle message")
		return
	}
	if handlerErr != nil {
		entry.WithError(handlerErr).Warn("message handling failed, requeued")
	}
}

// Settle acks msg when handlerErr is nil, and nacks it with requeue otherwise.
func Settle(msg Acknowledger, handlerErr error) error {
	if handlerErr != nil {
		return msg.Nack(false, true)
	}
	return msg.Ack(false)
}

// LogEvent is a consumer handler that records each event as a structured log entry.
func LogEvent(msg amqp.Delivery) error {
	log.WithFields(log.Fields{
		"routing_key":  msg.RoutingKey,
		"delivery_tag": msg.DeliveryTag,
		"body":         string(msg.Body),
	}).Info("event received")
	return nil
}
