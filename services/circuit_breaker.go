package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"stock-dashboard/observability"
)

// BreakerAlphaVantage is the circuit breaker name for Alpha Vantage calls
const BreakerAlphaVantage = "alphavantage"

// ErrServiceUnavailable is returned when a breaker rejects a call
var ErrServiceUnavailable = errors.New("service unavailable")

// CircuitBreakerConfig holds configuration for a circuit breaker
type CircuitBreakerConfig struct {
	MaxRequests  uint32        // max requests allowed in half-open state
	Interval     time.Duration // cyclic period of the closed state to clear counts
	Timeout      time.Duration // period of the open state before transitioning to half-open
	MinRequests  uint32        // requests needed before the failure ratio is considered
	FailureRatio float64       // ratio of failures that trips the breaker
}

// DefaultCircuitBreakerConfig trips after half of at least five requests fail
var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests:  5,
	Interval:     1 * time.Minute,
	Timeout:      30 * time.Second,
	MinRequests:  5,
	FailureRatio: 0.5,
}

// CircuitBreakerRegistry manages circuit breakers for different services
type CircuitBreakerRegistry struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
	config   CircuitBreakerConfig
}

// NewCircuitBreakerRegistry creates a new registry with the given config
func NewCircuitBreakerRegistry(config CircuitBreakerConfig) *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
		config:   config,
	}
}

// GetBreaker returns (or creates) a circuit breaker for the given service name
func (r *CircuitBreakerRegistry) GetBreaker(name string) *gobreaker.CircuitBreaker[any] {
	r.mu.RLock()
	cb, exists := r.breakers[name]
	r.mu.RUnlock()

	if exists {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, exists = r.breakers[name]; exists {
		return cb
	}

	minRequests, ratio := r.config.MinRequests, r.config.FailureRatio
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: r.config.MaxRequests,
		Interval:    r.config.Interval,
		Timeout:     r.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests || counts.Requests == 0 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		// an unknown symbol is the caller's mistake, not an upstream outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrQuoteNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			observability.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())

			metrics := observability.GetMetrics()
			metrics.SetCircuitBreakerState(name, stateToInt(to))
			if to == gobreaker.StateOpen {
				metrics.RecordCircuitBreakerTrip(name)
			}
		},
	}

	cb = gobreaker.NewCircuitBreaker[any](settings)
	r.breakers[name] = cb

	return cb
}

// Execute runs fn through the named circuit breaker
func (r *CircuitBreakerRegistry) Execute(ctx context.Context, name string, fn func() (any, error)) (any, error) {
	cb := r.GetBreaker(name)

	result, err := cb.Execute(func() (any, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		observability.Warn("circuit breaker open, rejecting request", "breaker", name)
		return nil, fmt.Errorf("%w: %s circuit breaker open", ErrServiceUnavailable, name)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		observability.Warn("circuit breaker half-open, too many requests", "breaker", name)
		return nil, fmt.Errorf("%w: %s has too many requests in half-open state", ErrServiceUnavailable, name)
	}

	return result, err
}

// Status returns the current state of all circuit breakers
func (r *CircuitBreakerRegistry) Status() map[string]CircuitBreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make(map[string]CircuitBreakerStatus)
	for name, cb := range r.breakers {
		counts := cb.Counts()
		status[name] = CircuitBreakerStatus{
			Name:             name,
			State:            cb.State().String(),
			Requests:         counts.Requests,
			TotalSuccesses:   counts.TotalSuccesses,
			TotalFailures:    counts.TotalFailures,
			ConsecutiveSucc:  counts.ConsecutiveSuccesses,
			ConsecutiveFails: counts.ConsecutiveFailures,
		}
	}
	return status
}

// AnyOpen reports whether any breaker is currently open
func (r *CircuitBreakerRegistry) AnyOpen() bool {
	for _, s := range r.Status() {
		if s.State == gobreaker.StateOpen.String() {
			return true
		}
	}
	return false
}

// CircuitBreakerStatus represents the current state of a circuit breaker
type CircuitBreakerStatus struct {
	Name             string `json:"name"`
	State            string `json:"state"`
	Requests         uint32 `json:"requests"`
	TotalSuccesses   uint32 `json:"total_successes"`
	TotalFailures    uint32 `json:"total_failures"`
	ConsecutiveSucc  uint32 `json:"consecutive_successes"`
	ConsecutiveFails uint32 `json:"consecutive_failures"`
}

// WithBreaker wraps a typed call with circuit breaker protection
func WithBreaker[T any](ctx context.Context, r *CircuitBreakerRegistry, name string, fn func() (T, error)) (T, error) {
	result, err := r.Execute(ctx, name, func() (any, error) {
		return fn()
	})

	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

// stateToInt converts a circuit breaker state to an integer for metrics
// 0=closed, 1=half-open, 2=open
func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
