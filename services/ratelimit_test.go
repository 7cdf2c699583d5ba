package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_SpacesCalls(t *testing.T) {
	delay := 50 * time.Millisecond
	limiter := NewRateLimiter(delay)

	var times []time.Time
	for i := 0; i < 3; i++ {
		err := limiter.Do(context.Background(), func() error {
			times = append(times, time.Now())
			return nil
		})
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
	}

	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < delay {
			t.Errorf("calls %d and %d only %v apart, want >= %v", i-1, i, gap, delay)
		}
	}
}

func TestRateLimiter_FirstCallImmediate(t *testing.T) {
	limiter := NewRateLimiter(time.Second)

	start := time.Now()
	err := limiter.Do(context.Background(), func() error { return nil })
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first call should not wait, took %v", elapsed)
	}
}

func TestRateLimiter_SerializesConcurrentCalls(t *testing.T) {
	limiter := NewRateLimiter(time.Millisecond)

	var mu sync.Mutex
	running := 0
	maxRunning := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Do(context.Background(), func() error {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxRunning != 1 {
		t.Errorf("expected strictly serialized execution, saw %d concurrent", maxRunning)
	}
}

func TestRateLimiter_QueuedCallsRunInArrivalOrder(t *testing.T) {
	limiter := NewRateLimiter(time.Millisecond)

	// Park a call inside the slot so every later caller has to queue.
	holderIn := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = limiter.Do(context.Background(), func() error {
			close(holderIn)
			<-release
			return nil
		})
	}()
	<-holderIn

	var mu sync.Mutex
	var order []int

	// Enqueue callers one at a time, pausing so each is blocked on the
	// slot before the next arrives.
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = limiter.Do(context.Background(), func() error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		time.Sleep(20 * time.Millisecond)
	}

	close(release)
	wg.Wait()

	for i, got := range order {
		if got != i {
			t.Fatalf("execution order %v does not match arrival order", order)
		}
	}
}

func TestRateLimiter_RetriesThrottled(t *testing.T) {
	limiter := NewRateLimiter(time.Millisecond)

	calls := 0
	err := limiter.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("quota: %w", ErrThrottled)
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success on third attempt: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRateLimiter_ThrottleBudgetExhausted(t *testing.T) {
	limiter := NewRateLimiter(time.Millisecond)

	calls := 0
	err := limiter.Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("quota: %w", ErrThrottled)
	})

	if err == nil {
		t.Fatal("expected failure after exhausting the attempt budget")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, ErrThrottled) {
		t.Errorf("final error should still wrap ErrThrottled: %v", err)
	}
}

func TestRateLimiter_OtherErrorsPropagateImmediately(t *testing.T) {
	limiter := NewRateLimiter(time.Millisecond)

	boom := NewError(ErrAPI, "boom")
	calls := 0
	err := limiter.Do(context.Background(), func() error {
		calls++
		return boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestRateLimiter_CancelWhileQueued(t *testing.T) {
	limiter := NewRateLimiter(time.Hour)

	// Take the slot and mark a call so the next caller must wait.
	if err := limiter.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("priming call failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Do(ctx, func() error {
		t.Error("fn should not run after cancellation")
		return nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestRateLimiter_LastCallUpdatedOnFailure(t *testing.T) {
	delay := 50 * time.Millisecond
	limiter := NewRateLimiter(delay)

	// A failing call still counts against the spacing window.
	_ = limiter.Do(context.Background(), func() error {
		return NewError(ErrAPI, "boom")
	})

	start := time.Now()
	if err := limiter.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("expected the next call to wait out the window, waited %v", elapsed)
	}
}
