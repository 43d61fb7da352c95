// Package notifications connects the AMQP push channel to operator feeds.
package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"

	"tokoadmin/internal/models"
	"tokoadmin/internal/state"
	"tokoadmin/pkg/rabbitmq"
)

// Broadcaster fans a notification out to live operator sessions.
type Broadcaster interface {
	Broadcast(n models.Notification) int
}

// Listener handles deliveries from the notification exchange.
type Listener struct {
	sink Broadcaster
	log  zerolog.Logger
}

// NewListener creates a Listener delivering into sink.
func NewListener(sink Broadcaster, log zerolog.Logger) *Listener {
	return &Listener{sink: sink, log: log.With().Str("component", "notifications").Logger()}
}

// Handle is a rabbitmq.Handler. Only newNotification messages are delivered;
// other types are acknowledged and ignored. Bodies that do not decode are
// rejected without requeue.
func (l *Listener) Handle(msg amqp.Delivery) error {
	if msg.Type != rabbitmq.EventNewNotification {
		l.log.Debug().Str("type", msg.Type).Msg("ignoring event")
		return nil
	}

	var n models.Notification
	if err := json.Unmarshal(msg.Body, &n); err != nil {
		return &rabbitmq.RejectError{Err: fmt.Errorf("failed to decode notification: %w", err)}
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	n.Read = false

	delivered := l.sink.Broadcast(n)
	l.log.Info().
		Str("type", string(n.Type)).
		Str("request_id", n.RequestID).
		Int("operators", delivered).
		Msg("notification received")
	return nil
}

// ReadEvent is published when an operator opens the dropdown.
type ReadEvent struct {
	OperatorID string    `json:"operatorId"`
	ReadAt     time.Time `json:"readAt"`
}

// Service exposes the feed operations used by the console handlers.
type Service struct {
	registry  *state.Registry
	publisher rabbitmq.Publisher
	log       zerolog.Logger
}

// NewService creates a Service. publisher may be nil when no broker is configured.
func NewService(registry *state.Registry, publisher rabbitmq.Publisher, log zerolog.Logger) *Service {
	return &Service{registry: registry, publisher: publisher, log: log}
}

// Feed returns the operator's current notifications.
func (s *Service) Feed(operatorID string) state.Feed {
	return s.registry.Get(operatorID).State().Notifications
}

// MarkRead resets the operator's unread counter and echoes the read event on
// the push channel. A failed publish is logged; the local state still changes.
func (s *Service) MarkRead(operatorID string) state.Feed {
	st := s.registry.Get(operatorID).Dispatch(state.NotificationsRead{})
	if s.publisher != nil {
		ev := ReadEvent{OperatorID: operatorID, ReadAt: time.Now()}
		if err := s.publisher.Publish(rabbitmq.EventNotificationsRead, ev); err != nil {
			s.log.Warn().Err(err).Str("operator", operatorID).Msg("failed to publish read event")
		}
	}
	return st.Notifications
}

// SellerRequest is the notification raised when a seller registers.
func SellerRequest(u models.User) models.Notification {
	name := u.Name
	if u.BusinessProfile != nil && u.BusinessProfile.Name != "" {
		name = u.BusinessProfile.Name
	}
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationSellerRequest,
		Title:     "New Seller Request",
		Message:   fmt.Sprintf("%s wants to become a seller", name),
		RequestID: u.ID,
		Timestamp: time.Now(),
	}
}

// ProductRequest is the notification raised when a product awaits approval.
func ProductRequest(p models.Product) models.Notification {
	seller := "A seller"
	if p.Seller != nil && p.Seller.Name != "" {
		seller = p.Seller.Name
	}
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationProductRequest,
		Title:     "New Product Approval Request",
		Message:   fmt.Sprintf("%s submitted %s for approval", seller, p.Title),
		RequestID: p.ID,
		ProductID: p.ID,
		Timestamp: time.Now(),
	}
}
