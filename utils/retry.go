package utils

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Factor      float64
	// Jitter scales every delay by a uniform random value in [0.5, 1.0].
	Jitter bool
	// RetryOn reports whether err is eligible for another attempt.
	// A nil RetryOn retries every error.
	RetryOn func(err error) bool
	Logger  *Logger

	// sleep and random are replaced in tests.
	sleep  func(ctx context.Context, d time.Duration) error
	random func() float64
}

// DefaultRetryConfig mirrors the backoff used across the pipeline:
// 3 attempts, 1s base, 60s cap, doubling, jittered.
func DefaultRetryConfig(logger *Logger) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		Factor:      2,
		Jitter:      true,
		Logger:      logger,
	}
}

// RetryKinds returns a RetryOn predicate accepting errors classified with
// one of kinds.
func RetryKinds(kinds ...ErrorKind) func(error) bool {
	return func(err error) bool {
		k := KindOf(err)
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

// Delay returns the un-jittered backoff before retry number attempt
// (0-based): min(base*factor^attempt, max).
func (r *RetryConfig) Delay(attempt int) time.Duration {
	factor := r.Factor
	if factor <= 0 {
		factor = 2
	}
	d := float64(r.BaseDelay) * math.Pow(factor, float64(attempt))
	if r.MaxDelay > 0 && d > float64(r.MaxDelay) {
		return r.MaxDelay
	}
	return time.Duration(d)
}

// Do executes fn with exponential back-off retry logic. Errors rejected by
// RetryOn are returned immediately; after the last attempt the last error is
// returned unmodified.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if r.RetryOn != nil && !r.RetryOn(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}

		delay := r.Delay(attempt)
		if r.Jitter {
			delay = time.Duration(float64(delay) * (0.5 + r.rand()*0.5))
		}
		r.log().Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
			operationName, attempt+1, attempts, lastErr, delay.Round(time.Millisecond))

		if err := r.wait(ctx, delay); err != nil {
			return lastErr
		}
	}

	r.log().Error("[retry] %s failed after %d attempts: %v", operationName, attempts, lastErr)
	return lastErr
}

func (r *RetryConfig) log() *Logger {
	if r.Logger == nil {
		return NewNopLogger()
	}
	return r.Logger
}

func (r *RetryConfig) rand() float64 {
	if r.random != nil {
		return r.random()
	}
	return rand.Float64()
}

func (r *RetryConfig) wait(ctx context.Context, d time.Duration) error {
	if r.sleep != nil {
		return r.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
