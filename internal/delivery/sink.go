// Package delivery defines the message-delivery boundary. The orchestrator
// only sees the Sink interface; outbound failures are recorded, never
// propagated as fatal errors.
package delivery

import (
	"context"

	"github.com/massaflow/practice-api/internal/model"
)

// Message is one rendered communication ready to leave the system.
type Message struct {
	Recipient string
	Subject   string
	Body      string
	Channel   model.CommunicationChannel
}

// Outcome reports what the sink did. Err is informational; callers log it
// into the communication trail and move on.
type Outcome struct {
	Success bool
	Err     error
}

// Sink delivers a rendered message. Implementations must respect the
// context deadline so a stuck channel cannot stall the cycle.
type Sink interface {
	Send(ctx context.Context, msg Message) Outcome
}
