package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"

	"stock-dashboard/observability"
)

func tripConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestNewCircuitBreakerRegistry(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	if registry.breakers == nil {
		t.Error("expected breakers map to be initialized")
	}
	if registry.config != DefaultCircuitBreakerConfig {
		t.Error("expected config to be set")
	}
}

func TestCircuitBreakerRegistry_GetBreaker(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	breaker1 := registry.GetBreaker(BreakerAlphaVantage)
	breaker2 := registry.GetBreaker(BreakerAlphaVantage)
	if breaker1 != breaker2 {
		t.Error("expected same breaker instance")
	}
	if breaker1 == registry.GetBreaker("other") {
		t.Error("expected different breaker for different name")
	}
}

func TestCircuitBreakerRegistry_Execute(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	result, err := registry.Execute(ctx, "svc", func() (any, error) {
		return "success", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}

	expectedErr := errors.New("boom")
	result, err = registry.Execute(ctx, "svc", func() (any, error) {
		return nil, expectedErr
	})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped fn error, got %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestCircuitBreakerRegistry_Execute_ContextCanceled(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := registry.Execute(ctx, "svc", func() (any, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("fn should not run with a cancelled context")
	}
}

func TestCircuitBreakerRegistry_TripsAfterFailures(t *testing.T) {
	metrics := useTestMetrics(t)
	registry := NewCircuitBreakerRegistry(tripConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = registry.Execute(ctx, BreakerAlphaVantage, func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	if got := registry.Status()[BreakerAlphaVantage].State; got != "open" {
		t.Fatalf("expected breaker to be open, got %s", got)
	}
	if !registry.AnyOpen() {
		t.Error("expected AnyOpen to report the open breaker")
	}

	_, err := registry.Execute(ctx, BreakerAlphaVantage, func() (any, error) {
		t.Error("fn should not run while the breaker is open")
		return nil, nil
	})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerTrips.WithLabelValues(BreakerAlphaVantage)); got != 1 {
		t.Errorf("expected 1 trip recorded, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues(BreakerAlphaVantage)); got != 2 {
		t.Errorf("expected open state gauge 2, got %v", got)
	}
}

func TestCircuitBreakerRegistry_UnknownSymbolsDoNotTrip(t *testing.T) {
	useTestMetrics(t)
	registry := NewCircuitBreakerRegistry(tripConfig())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := registry.Execute(ctx, BreakerAlphaVantage, func() (any, error) {
			return nil, fmt.Errorf("%w: TYPO.BSE", ErrQuoteNotFound)
		})
		if !errors.Is(err, ErrQuoteNotFound) {
			t.Fatalf("expected ErrQuoteNotFound to pass through, got %v", err)
		}
	}

	if got := registry.Status()[BreakerAlphaVantage].State; got != "closed" {
		t.Errorf("expected breaker to stay closed, got %s", got)
	}
}

func TestCircuitBreakerRegistry_BelowMinRequestsStaysClosed(t *testing.T) {
	registry := NewCircuitBreakerRegistry(tripConfig())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _ = registry.Execute(ctx, "svc", func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	if got := registry.Status()["svc"].State; got != "closed" {
		t.Errorf("expected closed breaker, got %s", got)
	}
	if registry.AnyOpen() {
		t.Error("expected no open breakers")
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	_, _ = registry.Execute(ctx, "service-a", func() (any, error) { return "ok", nil })
	_, _ = registry.Execute(ctx, "service-b", func() (any, error) { return nil, errors.New("fail") })

	status := registry.Status()
	if len(status) != 2 {
		t.Fatalf("expected 2 breakers in status, got %d", len(status))
	}
	if status["service-a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for service-a, got %d", status["service-a"].TotalSuccesses)
	}
	if status["service-b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for service-b, got %d", status["service-b"].TotalFailures)
	}
}

func TestWithBreaker_TypedResults(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	type result struct{ Value int }

	got, err := WithBreaker(ctx, registry, "typed", func() (*result, error) {
		return &result{Value: 42}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value != 42 {
		t.Errorf("unexpected result: %+v", got)
	}

	s, err := WithBreaker(ctx, registry, "typed", func() (string, error) {
		return "", errors.New("fail")
	})
	if err == nil {
		t.Error("expected error")
	}
	if s != "" {
		t.Errorf("expected zero value, got %q", s)
	}
}

func TestCircuitBreakerRegistry_Concurrent(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := registry.Execute(ctx, "concurrent", func() (any, error) {
				return id, nil
			}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := registry.Status()["concurrent"].TotalSuccesses; got != 10 {
		t.Errorf("expected 10 successes, got %d", got)
	}
}

func TestStateToInt(t *testing.T) {
	tests := []struct {
		state    gobreaker.State
		expected int
	}{
		{gobreaker.StateClosed, 0},
		{gobreaker.StateHalfOpen, 1},
		{gobreaker.StateOpen, 2},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := stateToInt(tt.state); got != tt.expected {
				t.Errorf("stateToInt(%s) = %d, want %d", tt.state, got, tt.expected)
			}
		})
	}
}

func useTestMetrics(t *testing.T) *observability.Metrics {
	t.Helper()
	m := observability.NewMetrics(prometheus.NewRegistry())
	observability.SetMetrics(m)
	return m
}
