package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Classification tells the executor what to do with a failed attempt.
// RetryAfter, when set, overrides the computed backoff (provider hint).
type Classification struct {
	Retryable     bool
	RecordFailure bool
	RetryAfter    time.Duration
}

type Classifier func(err error) Classification

// SleepFunc suspends between attempts; tests inject an immediate one.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Executor struct {
	cfg   Config
	sleep SleepFunc

	mu       sync.Mutex
	rand     *rand.Rand
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg Config) *Executor {
	e := &Executor{
		cfg:      cfg.normalize(),
		sleep:    cfg.Sleep,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
	if e.sleep == nil {
		e.sleep = sleepWithContext
	}
	return e
}

// Execute runs fn, retrying retryable failures with jittered exponential
// backoff. The first attempt plus MaxRetries retries bound the total at
// MaxRetries+1 attempts; the last error is returned once the budget is
// exhausted.
func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classify Classifier,
) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classify == nil {
		classify = defaultClassifier
	}

	if !e.cfg.BreakerEnabled {
		return e.executeWithRetry(ctx, op, fn, classify)
	}

	breaker := e.circuitBreaker(op, classify)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.executeWithRetry(ctx, op, fn, classify)
	})
	return err
}

func (e *Executor) executeWithRetry(
	ctx context.Context,
	operation string,
	fn func(context.Context) error,
	classify Classifier,
) error {
	maxAttempts := e.cfg.MaxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		class := classify(err)
		if !class.Retryable || attempt == maxAttempts {
			return err
		}

		wait := e.backoffDelay(attempt)
		if class.RetryAfter > 0 {
			wait = class.RetryAfter
			if wait > e.cfg.BackoffMax {
				wait = e.cfg.BackoffMax
			}
		}
		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"backoff_ms", float64(wait.Microseconds())/1000.0,
			"error", err,
		)

		if sleepErr := e.sleep(ctx, wait); sleepErr != nil {
			return err
		}
	}

	return nil
}

// backoffDelay is base*2^(attempt-1) with up to JitterFraction additive
// jitter, capped at BackoffMax.
func (e *Executor) backoffDelay(attempt int) time.Duration {
	base := float64(e.cfg.BackoffBase) * math.Pow(2, float64(attempt-1))
	capped := float64(e.cfg.BackoffMax)
	if base > capped {
		base = capped
	}

	e.mu.Lock()
	jitter := e.rand.Float64()
	e.mu.Unlock()

	delay := base * (1 + e.cfg.JitterFraction*jitter)
	if delay > capped {
		delay = capped
	}
	return time.Duration(delay)
}

func (e *Executor) circuitBreaker(operation string, classify Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	settings := gobreaker.Settings{
		Name:        operation,
		MaxRequests: e.cfg.BreakerHalfOpenMaxCalls,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			class := classify(err)
			return !class.RecordFailure
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}

	breaker := gobreaker.NewCircuitBreaker[any](settings)
	e.breakers[operation] = breaker
	return breaker
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func defaultClassifier(error) Classification {
	return Classification{
		Retryable:     false,
		RecordFailure: true,
	}
}
