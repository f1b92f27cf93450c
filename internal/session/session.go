// Package session drives one run of the code buffer against the remote
// interpreter.
//
// A run replays the whole program on every turn: the first call carries no
// inputs, and every SubmitInput resends the source with the complete input
// history. The remote side keeps no state between calls.
//
//	idle ──Start──▶ submitting ──▶ awaiting_input ──SubmitInput──▶ submitting
//	                     │
//	                     ├──▶ done
//	                     └──▶ failed
//
// done and failed accept Start again; Dismiss returns to idle.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/pytutor/internal/interpreter"
	"github.com/zjrosen/pytutor/internal/log"
	"github.com/zjrosen/pytutor/internal/pubsub"
	"github.com/zjrosen/pytutor/internal/retry"
	"github.com/zjrosen/pytutor/internal/tracing"
)

// Session is an execution session. It is safe for concurrent use; calls that
// would overlap an in-flight remote call fail with ErrBusy.
type Session struct {
	interp    interpreter.Interpreter
	policy    retry.Policy
	publisher pubsub.Publisher[StateChange]
	tracer    trace.Tracer
	recorder  Recorder
	pick      interpreter.Picker
	locale    string
	now       func() time.Time

	mu         sync.RWMutex
	id         string
	state      State
	source     string
	inputs     []string
	verdict    *interpreter.Verdict
	prompt     string
	errorLines []int
	lastErr    error
}

// New creates an idle session.
func New(interp interpreter.Interpreter, opts ...Option) *Session {
	policy := retry.Default()
	policy.Classify = interpreter.Retryable

	s := &Session{
		interp: interp,
		policy: policy,
		tracer: noop.NewTracerProvider().Tracer("session"),
		locale: interpreter.DefaultLocale,
		now:    time.Now,
		state:  StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot is the mutable state restored when a call fails authorization.
type snapshot struct {
	id         string
	state      State
	source     string
	inputs     []string
	verdict    *interpreter.Verdict
	prompt     string
	errorLines []int
	lastErr    error
}

func (s *Session) save() snapshot {
	return snapshot{
		id:         s.id,
		state:      s.state,
		source:     s.source,
		inputs:     s.inputs,
		verdict:    s.verdict,
		prompt:     s.prompt,
		errorLines: s.errorLines,
		lastErr:    s.lastErr,
	}
}

func (s *Session) restore(snap snapshot) {
	s.id = snap.id
	s.source = snap.source
	s.inputs = snap.inputs
	s.verdict = snap.verdict
	s.prompt = snap.prompt
	s.errorLines = snap.errorLines
	s.lastErr = snap.lastErr
	s.transition(snap.state)
}

// Start begins a new run of buffer with an empty input log. It returns
// interpreter.ErrEmptySource for a blank buffer, ErrBusy while submitting and
// ErrInvalidTransition while awaiting input.
//
// Service failures end the run in StateFailed with a synthesized verdict and
// a nil error. Authorization failures are returned unchanged and leave the
// session as it was before the call.
func (s *Session) Start(ctx context.Context, buffer string) error {
	if strings.TrimSpace(buffer) == "" {
		return interpreter.ErrEmptySource
	}

	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return ErrBusy
	}
	if !s.state.CanStart() {
		from := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, from)
	}

	snap := s.save()
	s.id = uuid.NewString()
	s.source = buffer
	s.inputs = nil
	s.verdict = nil
	s.prompt = ""
	s.errorLines = nil
	s.lastErr = nil
	s.transition(StateSubmitting)
	req := s.request()
	s.mu.Unlock()

	return s.call(ctx, tracing.SpanSessionStart, req, snap)
}

// SubmitInput appends value to the input log and replays the program with the
// full log. It is only valid in StateAwaitingInput; otherwise nothing is sent
// and the state is unchanged.
func (s *Session) SubmitInput(ctx context.Context, value string) error {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.state != StateAwaitingInput {
		from := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: submit input from %s", ErrInvalidTransition, from)
	}

	snap := s.save()
	s.inputs = append(slices.Clone(s.inputs), value)
	s.transition(StateSubmitting)
	req := s.request()
	s.mu.Unlock()

	return s.call(ctx, tracing.SpanSessionSubmit, req, snap)
}

// Dismiss discards the current run and returns to idle.
func (s *Session) Dismiss() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ErrBusy
	}
	s.id = ""
	s.source = ""
	s.inputs = nil
	s.verdict = nil
	s.prompt = ""
	s.errorLines = nil
	s.lastErr = nil
	s.transition(StateIdle)
	return nil
}

// EditBuffer tells the session the buffer changed, which clears the flagged
// error lines.
func (s *Session) EditBuffer() {
	s.mu.Lock()
	s.errorLines = nil
	s.mu.Unlock()
}

// SetLocale changes the language used for subsequent calls.
func (s *Session) SetLocale(locale string) {
	s.mu.Lock()
	s.locale = locale
	s.mu.Unlock()
}

// request must be called with mu held.
func (s *Session) request() interpreter.Request {
	return interpreter.Request{
		SourceCode:  s.source,
		PriorInputs: slices.Clone(s.inputs),
		Locale:      s.locale,
	}
}

func (s *Session) call(ctx context.Context, spanName string, req interpreter.Request, snap snapshot) error {
	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String(tracing.AttrLocale, req.Locale),
		attribute.Int(tracing.AttrInputCount, len(req.PriorInputs)),
		attribute.Int(tracing.AttrSourceBytes, len(req.SourceCode)),
	))
	defer span.End()

	verdict, err := retry.Call(ctx, s.policy, func(ctx context.Context) (interpreter.Verdict, error) {
		return s.interp.Interpret(ctx, req)
	})

	s.mu.Lock()
	span.SetAttributes(attribute.String(tracing.AttrSessionID, s.id))

	if err != nil && interpreter.IsAuthError(err) {
		s.restore(snap)
		s.mu.Unlock()
		log.ErrorErr(log.CatSession, "authorization failed", err)
		tracing.RecordError(span, err)
		span.SetAttributes(attribute.String(tracing.AttrErrorType, "auth"))
		return err
	}

	if err != nil {
		log.ErrorErr(log.CatSession, "remote call failed", err, "inputs", len(req.PriorInputs))
		tracing.RecordError(span, err)
		span.SetAttributes(attribute.String(tracing.AttrErrorType, errorType(err)))
		span.AddEvent(tracing.EventBusyVerdict)

		verdict = interpreter.Verdict{
			Explanation: interpreter.BusyMessage(req.Locale, s.pick),
			IsError:     true,
		}
		s.verdict = &verdict
		s.errorLines = nil
		s.lastErr = err
		s.transition(StateFailed)
	} else {
		s.lastErr = nil
		s.apply(verdict)
	}

	span.SetAttributes(
		attribute.String(tracing.AttrSessionState, string(s.state)),
		attribute.Bool(tracing.AttrVerdictError, verdict.IsError),
		attribute.Bool(tracing.AttrVerdictNeedsInput, verdict.NeedsInput),
		attribute.Int(tracing.AttrErrorLineCount, len(s.errorLines)),
	)
	turn := Turn{
		SessionID: s.id,
		Locale:    req.Locale,
		Source:    req.SourceCode,
		Inputs:    req.PriorInputs,
		State:     s.state,
		Verdict:   verdict,
		CreatedAt: s.now(),
	}
	s.mu.Unlock()

	if s.recorder != nil {
		if rerr := s.recorder.Record(ctx, turn); rerr != nil {
			log.ErrorErr(log.CatSession, "failed to record turn", rerr, "session", turn.SessionID)
		}
	}
	return nil
}

// apply must be called with mu held.
func (s *Session) apply(v interpreter.Verdict) {
	s.verdict = &v
	if v.NeedsInput {
		s.prompt = v.InputPrompt
		if s.prompt == "" {
			s.prompt = DefaultPrompt
		}
		s.transition(StateAwaitingInput)
		return
	}

	s.prompt = ""
	s.errorLines = slices.Clone(v.ErrorLines)
	if v.IsError {
		s.transition(StateFailed)
	} else {
		s.transition(StateDone)
	}
}

// transition must be called with mu held.
func (s *Session) transition(to State) {
	from := s.state
	s.state = to
	log.Debug(log.CatSession, "transition", "session", s.id, "from", from, "to", to)
	if s.publisher != nil {
		s.publisher.Publish(pubsub.UpdatedEvent, StateChange{SessionID: s.id, From: from, To: to})
	}
}

func errorType(err error) string {
	var me *interpreter.MalformedResponseError
	switch {
	case errors.As(err, &me):
		return "malformed_response"
	case retry.IsTransient(err):
		return "transient"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "service"
	}
}

// ID returns the current run's ID, or "" when idle.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Verdict returns the latest verdict, if any.
func (s *Session) Verdict() (interpreter.Verdict, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.verdict == nil {
		return interpreter.Verdict{}, false
	}
	v := *s.verdict
	v.ErrorLines = slices.Clone(v.ErrorLines)
	return v, true
}

// ErrorLines returns the flagged 1-based line numbers.
func (s *Session) ErrorLines() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.errorLines)
}

// LastError returns the service failure that ended the current run in
// StateFailed, such as a *interpreter.MalformedResponseError. It is nil when
// the last call succeeded.
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Inputs returns the input log of the current run.
func (s *Session) Inputs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.inputs)
}

// Prompt returns the input prompt while awaiting input.
func (s *Session) Prompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prompt
}

// Source returns the buffer snapshot the current run executes.
func (s *Session) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Locale returns the session's locale.
func (s *Session) Locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}
