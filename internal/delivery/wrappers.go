package delivery

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/massaflow/practice-api/pkg/circuitbreaker"
)

// ThrottledSink caps outbound sends per second so a large cycle cannot
// flood the provider.
type ThrottledSink struct {
	next    Sink
	limiter *rate.Limiter
}

func NewThrottledSink(next Sink, perSecond float64, burst int) *ThrottledSink {
	return &ThrottledSink{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (s *ThrottledSink) Send(ctx context.Context, msg Message) Outcome {
	if err := s.limiter.Wait(ctx); err != nil {
		return Outcome{Err: err}
	}
	return s.next.Send(ctx, msg)
}

// BreakerSink trips after repeated provider failures so the rest of the
// cycle degrades to fast, recorded failures instead of waiting on a dead
// provider every time.
type BreakerSink struct {
	next Sink
	cb   *circuitbreaker.CircuitBreaker
}

func NewBreakerSink(next Sink, maxFailures int, cooldown time.Duration) *BreakerSink {
	return &BreakerSink{
		next: next,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "delivery",
			MaxFailures: maxFailures,
			Timeout:     cooldown,
		}),
	}
}

func (s *BreakerSink) Send(ctx context.Context, msg Message) Outcome {
	var out Outcome
	err := s.cb.Execute(func() error {
		out = s.next.Send(ctx, msg)
		return out.Err
	})
	if err != nil && out.Err == nil {
		// breaker rejected the call before it reached the sink
		out = Outcome{Err: err}
	}
	return out
}
