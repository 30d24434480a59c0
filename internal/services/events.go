package services

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventPublisher is the outbound message transport.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// Notifier emits domain events. A nil *Notifier, or one without a publisher,
// logs and skips.
type Notifier struct {
	publisher EventPublisher
	exchange  string
}

func NewNotifier(publisher EventPublisher, exchange string) *Notifier {
	return &Notifier{publisher: publisher, exchange: exchange}
}

// Event is the envelope published for every domain event.
type Event struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Emit publishes payload under routingKey. Failures are logged, never returned.
func (n *Notifier) Emit(routingKey string, payload interface{}) {
	if n == nil || n.publisher == nil {
		log.WithField("event", routingKey).Debug("event publisher is not configured, skipping publication")
		return
	}
	body, err := json.Marshal(Event{Type: routingKey, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		log.WithError(err).WithField("event", routingKey).Error("failed to marshal event")
		return
	}
	if err := n.publisher.Publish(n.exchange, routingKey, body); err != nil {
		log.WithError(err).WithField("event", routingKey).Warn("failed to publish event")
		return
	}
	log.WithField("event", routingKey).Debug("published event")
}

const (
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrderCancelled       = "order.cancelled"
	EventOrderPaymentChanged  = "order.payment_changed"
	EventPrescriptionUploaded = "prescription.uploaded"
	EventPrescriptionVerified = "prescription.verified"
)
