package session

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/pytutor/internal/interpreter"
	"github.com/zjrosen/pytutor/internal/pubsub"
	"github.com/zjrosen/pytutor/internal/retry"
)

// Recorder persists completed turns.
type Recorder interface {
	Record(ctx context.Context, turn Turn) error
}

// Option configures a Session.
type Option func(*Session)

// WithRetry sets the retry policy. A nil classifier means
// interpreter.Retryable.
func WithRetry(p retry.Policy) Option {
	return func(s *Session) {
		if p.Classify == nil {
			p.Classify = interpreter.Retryable
		}
		s.policy = p
	}
}

// WithPublisher publishes every state change.
func WithPublisher(p pubsub.Publisher[StateChange]) Option {
	return func(s *Session) {
		s.publisher = p
	}
}

// WithTracer records runs as spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Session) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithRecorder persists every completed turn.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

// WithBusyPicker sets how busy messages are chosen.
func WithBusyPicker(p interpreter.Picker) Option {
	return func(s *Session) {
		s.pick = p
	}
}

// WithLocale sets the natural language of explanations.
func WithLocale(locale string) Option {
	return func(s *Session) {
		if locale != "" {
			s.locale = locale
		}
	}
}

// WithClock sets the time source for recorded turns.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}
