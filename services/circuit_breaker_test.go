package services

import (
	"context"
	"strings"
	"testing"
	"time"
)

func testRegistry() *CircuitBreakerRegistry {
	return NewCircuitBreakerRegistry(CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
	})
}

func TestCircuitBreaker_TripsOnRepeatedFailures(t *testing.T) {
	registry := testRegistry()
	boom := NewError(ErrAPI, "upstream down")

	for i := 0; i < 5; i++ {
		_, err := registry.Execute(context.Background(), "test", func() (any, error) {
			return nil, boom
		})
		if err == nil {
			t.Fatal("expected failure")
		}
	}

	// The breaker is open now; the function must not run.
	ran := false
	_, err := registry.Execute(context.Background(), "test", func() (any, error) {
		ran = true
		return nil, nil
	})
	if err == nil {
		t.Fatal("expected open-breaker rejection")
	}
	if ran {
		t.Error("function should not run while the breaker is open")
	}
	if !strings.Contains(err.Error(), "circuit breaker open") {
		t.Errorf("expected an open-breaker error, got %v", err)
	}
}

func TestCircuitBreaker_CallerFaultsDoNotTrip(t *testing.T) {
	registry := testRegistry()
	bad := NewError(ErrInvalidSymbol, "unknown ticker")

	for i := 0; i < 10; i++ {
		_, err := registry.Execute(context.Background(), "test", func() (any, error) {
			return nil, bad
		})
		if err == nil {
			t.Fatal("expected failure")
		}
	}

	// Invalid-symbol failures say nothing about provider health, so the
	// breaker should still admit calls.
	ran := false
	_, _ = registry.Execute(context.Background(), "test", func() (any, error) {
		ran = true
		return nil, nil
	})
	if !ran {
		t.Error("breaker should stay closed for caller-fault errors")
	}
}

func TestCircuitBreaker_SuccessPassesThrough(t *testing.T) {
	registry := testRegistry()

	result, err := registry.Execute(context.Background(), "test", func() (any, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "ok" {
		t.Errorf("expected result passthrough, got %v", result)
	}
}

func TestCircuitBreaker_ContextCancelled(t *testing.T) {
	registry := testRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	_, err := registry.Execute(ctx, "test", func() (any, error) {
		ran = true
		return nil, nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if ran {
		t.Error("function should not run with a cancelled context")
	}
}

func TestWithCircuitBreaker_Typed(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	got, err := WithCircuitBreaker(context.Background(), "typed-test", func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("WithCircuitBreaker failed: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	_, err = WithCircuitBreaker(context.Background(), "typed-test", func() (int, error) {
		return 0, NewError(ErrAPI, "boom")
	})
	if err == nil {
		t.Fatal("expected error passthrough")
	}
	if code := CodeOf(err); code != ErrAPI {
		t.Errorf("expected classification preserved, got %s", code)
	}
}

func TestRegistry_Status(t *testing.T) {
	registry := testRegistry()

	_, _ = registry.Execute(context.Background(), "svc-a", func() (any, error) { return nil, nil })
	_, _ = registry.Execute(context.Background(), "svc-b", func() (any, error) { return nil, NewError(ErrAPI, "x") })

	status := registry.Status()
	if len(status) != 2 {
		t.Fatalf("expected 2 breakers, got %d", len(status))
	}
	if status["svc-a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for svc-a, got %d", status["svc-a"].TotalSuccesses)
	}
	if status["svc-b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for svc-b, got %d", status["svc-b"].TotalFailures)
	}
}
