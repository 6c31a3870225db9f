package delivery

import (
	"context"

	"github.com/massaflow/practice-api/pkg/logger"
)

// LogSink writes messages to the application log instead of delivering
// them. Dev mode default.
type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log.WithComponent("delivery")}
}

func (s *LogSink) Send(_ context.Context, msg Message) Outcome {
	s.logger.Info("message delivered to log sink",
		"recipient", msg.Recipient,
		"channel", string(msg.Channel),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return Outcome{Success: true}
}
