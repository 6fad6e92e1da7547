package pubsub

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultRetryInitialInterval = 100 * time.Millisecond
	defaultRetryMaxInterval     = 5 * time.Second
	defaultRetryMaxElapsedTime  = 30 * time.Second
)

// RetryOption configures the retrying transport decorator.
type RetryOption func(*retryConfig)

type retryConfig struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	maxRetries      uint64
	retryable       func(error) bool
	logger          Logger
}

func defaultRetryConfig() *retryConfig {
	return &retryConfig{
		initialInterval: defaultRetryInitialInterval,
		maxInterval:     defaultRetryMaxInterval,
		maxElapsedTime:  defaultRetryMaxElapsedTime,
		retryable:       defaultRetryable,
		logger:          NewNoopLogger(),
	}
}

// WithRetryInitialInterval sets the first backoff interval.
func WithRetryInitialInterval(d time.Duration) RetryOption {
	return func(c *retryConfig) {
		if d > 0 {
			c.initialInterval = d
		}
	}
}

// WithRetryMaxInterval caps the backoff interval.
func WithRetryMaxInterval(d time.Duration) RetryOption {
	return func(c *retryConfig) {
		if d > 0 {
			c.maxInterval = d
		}
	}
}

// WithRetryMaxElapsedTime bounds the total time spent retrying one batch.
// Zero disables the bound.
func WithRetryMaxElapsedTime(d time.Duration) RetryOption {
	return func(c *retryConfig) {
		if d >= 0 {
			c.maxElapsedTime = d
		}
	}
}

// WithRetryMaxAttempts bounds the number of retries after the initial
// attempt. Zero means attempts are limited only by elapsed time.
func WithRetryMaxAttempts(n uint64) RetryOption {
	return func(c *retryConfig) {
		c.maxRetries = n
	}
}

// WithRetryClassifier replaces the predicate that decides whether an error
// is worth another attempt.
func WithRetryClassifier(fn func(error) bool) RetryOption {
	return func(c *retryConfig) {
		if fn != nil {
			c.retryable = fn
		}
	}
}

// WithRetryLogger sets the logger used to report retry attempts.
func WithRetryLogger(logger Logger) RetryOption {
	return func(c *retryConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// defaultRetryable treats context cancellation and deadline expiry as
// permanent and everything else as transient.
func defaultRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

type retryTransport struct {
	next Transport
	cfg  *retryConfig
}

// NewRetryTransport wraps a transport with exponential backoff retries.
// The pipeline itself never retries a failed batch, so retry policy lives
// entirely in this decorator. The wrapped transport must stay all or
// nothing per attempt for the positional id contract to hold.
func NewRetryTransport(next Transport, opts ...RetryOption) (Transport, error) {
	if next == nil {
		return nil, ErrNilTransport
	}

	cfg := defaultRetryConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &retryTransport{next: next, cfg: cfg}, nil
}

func (t *retryTransport) PublishBatch(ctx context.Context, topic string, msgs []*Message) ([]string, error) {
	backoffConfig := backoff.NewExponentialBackOff()
	backoffConfig.InitialInterval = t.cfg.initialInterval
	backoffConfig.MaxInterval = t.cfg.maxInterval
	backoffConfig.MaxElapsedTime = t.cfg.maxElapsedTime

	var policy backoff.BackOff = backoff.WithContext(backoffConfig, ctx)
	if t.cfg.maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, t.cfg.maxRetries)
	}

	var ids []string
	attempt := 0

	operation := func() error {
		attempt++

		result, err := t.next.PublishBatch(ctx, topic, msgs)
		if err != nil {
			if !t.cfg.retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		ids = result
		return nil
	}

	notify := func(err error, next time.Duration) {
		t.cfg.logger.Warn(ctx, "publish attempt failed, backing off",
			String("topic", topic),
			Int("attempt", attempt),
			Int("messages", len(msgs)),
			Duration("next_retry_in", next),
			Err(err),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}

	return ids, nil
}
