package transport

import (
	"fmt"
	"time"

	"github.com/jpillora/backoff"

	"github.com/alsa-project/snd-firewire-ctl-services-sub014/tcat"
)

// RetryConfig holds the retry policy.
type RetryConfig struct {
	// Attempts bounds the number of tries per transaction.
	Attempts int
	// Min and Max bound the delay between tries.
	Min time.Duration
	Max time.Duration
}

func defaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: 3,
		Min:      10 * time.Millisecond,
		Max:      200 * time.Millisecond,
	}
}

// RetryOption is a functional option for configuring the Retry wrapper.
type RetryOption func(*RetryConfig)

// WithAttempts bounds the number of tries per transaction.
func WithAttempts(attempts int) RetryOption {
	return func(c *RetryConfig) {
		if attempts > 0 {
			c.Attempts = attempts
		}
	}
}

// WithDelayBounds bounds the exponential delay between tries.
func WithDelayBounds(min, max time.Duration) RetryOption {
	return func(c *RetryConfig) {
		if min > 0 {
			c.Min = min
		}
		if max >= min {
			c.Max = max
		}
	}
}

// Retry wraps a Transport and retries failed transactions with
// exponential backoff. Devices occasionally drop transactions right after
// a bus reset; a bounded retry hides those without masking a dead unit.
type Retry struct {
	tr     tcat.Transport
	config RetryConfig
}

// NewRetry wraps a transport with a retry policy.
func NewRetry(tr tcat.Transport, opts ...RetryOption) *Retry {
	config := defaultRetryConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &Retry{tr: tr, config: config}
}

func (r *Retry) do(op func() error) error {
	b := &backoff.Backoff{
		Min:    r.config.Min,
		Max:    r.config.Max,
		Factor: 2,
		Jitter: true,
	}

	var err error
	for attempt := 0; attempt < r.config.Attempts; attempt++ {
		if attempt > 0 {
			time.Sleep(b.Duration())
		}
		if err = op(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("after %d attempts: %w", r.config.Attempts, err)
}

// Read performs the read transaction, retrying on failure.
func (r *Retry) Read(addr uint64, buf []byte, timeout time.Duration) error {
	return r.do(func() error {
		return r.tr.Read(addr, buf, timeout)
	})
}

// Write performs the write transaction, retrying on failure.
func (r *Retry) Write(addr uint64, buf []byte, timeout time.Duration) error {
	return r.do(func() error {
		return r.tr.Write(addr, buf, timeout)
	})
}
