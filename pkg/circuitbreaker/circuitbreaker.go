package circuitbreaker

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

var (
	// MinRequestsBeforeTripping ...
	MinRequestsBeforeTripping = 10
	// FailingRatio ...
	FailingRatio = 0.6
	// OpenStateTimeout ...
	OpenStateTimeout = 30 * time.Second
)

// NewCircuitBreaker is a factory function returning a *gobreaker.CircuitBreaker
// guarding the requests towards a node. The breaker trips once at least
// MinRequestsBeforeTripping requests have been made and FailingRatio of them
// failed, and probes the node again after OpenStateTimeout.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: OpenStateTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) >= MinRequestsBeforeTripping &&
				ratio >= FailingRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf(
				"circuit breaker %s changed state from %s to %s",
				name, from.String(), to.String(),
			)
		},
	})
}
