// Package retry provides bounded exponential backoff for transient API
// failures inside the embedding adapters. The orchestrator itself never
// retries a file; resumability there comes from fingerprint-keyed artifacts.
package retry

import (
	"context"
	"math"
	"time"
)

// Config holds the configuration for retry logic.
type Config struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultConfig returns a sensible default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseDelay:       200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		BackoffMultiple: 2.0,
	}
}

// calculateDelay computes the delay for the given attempt using exponential
// backoff.
func (c Config) calculateDelay(attempt int) time.Duration {
	delay := time.Duration(float64(c.BaseDelay) * math.Pow(c.BackoffMultiple, float64(attempt)))
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// Do runs fn, retrying while retryable(err) reports the failure as
// transient and attempts remain. Context cancellation aborts the wait.
func Do(ctx context.Context, cfg Config, retryable func(error) bool, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.calculateDelay(attempt - 1)):
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if retryable == nil || !retryable(err) {
			return err
		}
	}
	return lastErr
}
