// Package retry runs remote calls under a bounded exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/pytutor/internal/log"
)

// Defaults for Policy.
const (
	DefaultMaxRetries   = 1
	DefaultInitialDelay = 1000 * time.Millisecond
	DefaultMultiplier   = 2.0
)

// Policy describes how a failed call is retried.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// Multiplier scales the delay after every retry.
	Multiplier float64
	// Classify reports whether an error is worth retrying. Nil means IsTransient.
	Classify func(error) bool
	// Sleep waits for d or until ctx is done. Nil means a timer-based sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Default returns one retry after 1s, doubling, with IsTransient.
func Default() Policy {
	return Policy{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
		Classify:     IsTransient,
		Sleep:        Sleep,
	}
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// schedule returns the delay sequence. Jitter is disabled so waits are exact.
func (p Policy) schedule() *backoff.ExponentialBackOff {
	mult := p.Multiplier
	if mult < 1 {
		mult = DefaultMultiplier
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          mult,
		MaxInterval:         time.Duration(math.MaxInt64),
	}
	b.Reset()
	return b
}

// Do calls fn until it succeeds, fails with a terminal error, or the retry
// budget is spent. The last error is returned unchanged.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := Call(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Call is Do for functions that return a value.
func Call[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	classify := p.Classify
	if classify == nil {
		classify = IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	span := trace.SpanFromContext(ctx)
	sched := p.schedule()
	remaining := max(p.MaxRetries, 0)

	for attempt := 1; ; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}

		transient := classify(err)
		span.AddEvent("retry.attempt", trace.WithAttributes(
			attribute.Int("attempt", attempt),
			attribute.Bool("transient", transient),
			attribute.String("error", err.Error()),
		))

		if !transient || remaining == 0 {
			log.Debug(log.CatRetry, "giving up", "attempt", attempt, "transient", transient, "error", err)
			return value, err
		}

		delay := sched.NextBackOff()
		log.Warn(log.CatRetry, "transient failure, retrying", "attempt", attempt, "delay", delay, "error", err)
		if serr := sleep(ctx, delay); serr != nil {
			return value, serr
		}
		remaining--
	}
}

// statusCoder is implemented by errors that carry an HTTP-like status.
type statusCoder interface {
	StatusCode() int
}

var transientMarkers = []string{"quota", "limit", "exhausted", "429"}

// IsTransient reports whether err is a rate-limit or overload signal: status
// 429, 500 or 503, or a message mentioning quota, limit, exhausted or 429.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		switch sc.StatusCode() {
		case 429, 500, 503:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
