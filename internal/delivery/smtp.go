package delivery

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/massaflow/practice-api/internal/model"
)

// SMTPConfig configures the gomail-backed email sink.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSink sends email via SMTP. Non-email channels are reported as
// failures; SMS/push providers plug in as their own sinks.
type SMTPSink struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSink(cfg SMTPConfig) *SMTPSink {
	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}
	return &SMTPSink{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (s *SMTPSink) Send(ctx context.Context, msg Message) Outcome {
	if msg.Channel != model.ChannelEmail {
		return Outcome{Err: fmt.Errorf("channel %s not supported by SMTP sink", msg.Channel)}
	}
	if msg.Recipient == "" {
		return Outcome{Err: fmt.Errorf("no recipient address")}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	// gomail has no context support; run the dial in a goroutine and let
	// the deadline win.
	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return Outcome{Err: fmt.Errorf("smtp send failed: %w", err)}
		}
		return Outcome{Success: true}
	case <-ctx.Done():
		return Outcome{Err: fmt.Errorf("smtp send timed out: %w", ctx.Err())}
	}
}
