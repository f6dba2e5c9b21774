package pipeline

import (
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/jorge-barreto/blogflow/internal/common"
)

// BreakerSettings configures the per-stage circuit breaker. A zero
// MaxFailures disables it.
type BreakerSettings struct {
	MaxFailures uint32
	Cooldown    time.Duration
}

func newBreaker(stage Stage, s BreakerSettings, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if s.MaxFailures == 0 {
		return nil
	}
	cooldown := s.Cooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(stage),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("stage", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// timeouts and cancellations are not failures
		IsSuccessful: func(err error) bool {
			switch common.KindOf(err) {
			case common.KindServer, common.KindMalformed:
				return false
			}
			return true
		},
	})
}
