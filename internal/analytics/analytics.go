// Package analytics emits fire-and-forget engagement events for alerting
// and audit. Events are best effort and never required for correctness.
package analytics

import (
	"context"
	"time"

	"github.com/massaflow/practice-api/pkg/logger"
	"github.com/massaflow/practice-api/pkg/messaging"
)

// Sink receives engagement events. Implementations must never block the
// caller beyond a short publish timeout.
type Sink interface {
	Track(eventName string, properties map[string]interface{}, userID string)
}

// Event is the wire shape published to the broker.
type Event struct {
	Timestamp  time.Time              `json:"timestamp"`
	EventName  string                 `json:"event_name"`
	UserID     string                 `json:"user_id"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

const (
	channel        = "engagement_events"
	publishTimeout = 2 * time.Second

	anonymousUser = "anonymous"
)

// BrokerSink publishes events to the message broker.
type BrokerSink struct {
	broker messaging.Broker
	logger *logger.Logger
}

func NewBrokerSink(broker messaging.Broker, log *logger.Logger) *BrokerSink {
	return &BrokerSink{broker: broker, logger: log.WithComponent("analytics")}
}

func (s *BrokerSink) Track(eventName string, properties map[string]interface{}, userID string) {
	if userID == "" {
		userID = anonymousUser
	}
	evt := Event{
		Timestamp:  time.Now(),
		EventName:  eventName,
		UserID:     userID,
		Properties: properties,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.broker.Publish(ctx, channel, evt); err != nil {
			s.logger.Error(err, "failed to publish engagement event", "event", eventName)
		}
	}()
}

// NopSink discards all events. Used in tests and when no broker is
// configured.
type NopSink struct{}

func (NopSink) Track(string, map[string]interface{}, string) {}
