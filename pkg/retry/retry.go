package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrMaxRetriesExceeded is wrapped together with the last attempt error
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Config contains retry configuration
type Config struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// InitialInterval is the first backoff interval
	InitialInterval time.Duration
	// MaxInterval caps the backoff interval
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry
	Multiplier float64
	// JitterFactor adds ± jitter as a fraction of the interval (0-1)
	JitterFactor float64
}

// DefaultConfig returns the backoff used for calls to external providers:
// 200ms, 400ms, 800ms with ±10% jitter.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError wraps an error that must not be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks an error as permanent
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Do runs op until it succeeds, returns a permanent error, runs out of
// retries or ctx is done. The returned error wraps the last op error.
func Do(ctx context.Context, config *Config, op Operation) error {
	if config == nil {
		config = DefaultConfig()
	}

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var permErr *PermanentError
		if errors.As(err, &permErr) {
			return permErr.Err
		}

		if attempt == config.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-time.After(backoff(config, attempt)):
		}
	}

	return fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

func backoff(config *Config, attempt int) time.Duration {
	initial := config.InitialInterval
	if initial <= 0 {
		initial = 200 * time.Millisecond
	}
	multiplier := config.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt))

	if config.JitterFactor > 0 {
		jitter := interval * math.Min(config.JitterFactor, 1)
		interval += (rand.Float64()*2 - 1) * jitter
	}

	if config.MaxInterval > 0 && interval > float64(config.MaxInterval) {
		interval = float64(config.MaxInterval)
	}
	if interval < 0 {
		interval = float64(initial)
	}

	return time.Duration(interval)
}
