package session

import (
	"errors"
	"time"

	"github.com/zjrosen/pytutor/internal/interpreter"
)

// State is the lifecycle state of a run.
type State string

const (
	// StateIdle means no run has started or the last one was dismissed.
	StateIdle State = "idle"

	// StateSubmitting means a remote call is in flight.
	StateSubmitting State = "submitting"

	// StateAwaitingInput means the program is blocked on input().
	StateAwaitingInput State = "awaiting_input"

	// StateDone means the run finished without an error.
	StateDone State = "done"

	// StateFailed means the run finished with an error or the service failed.
	StateFailed State = "failed"
)

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	switch s {
	case StateIdle, StateSubmitting, StateAwaitingInput, StateDone, StateFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether a run in s has finished.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// CanStart reports whether a new run may start from s.
func (s State) CanStart() bool {
	return s == StateIdle || s.IsTerminal()
}

// DefaultPrompt is shown when the model asks for input without a prompt.
const DefaultPrompt = "Input:"

var (
	// ErrBusy is returned when a call is attempted while a remote call is in
	// flight.
	ErrBusy = errors.New("session is submitting")

	// ErrInvalidTransition is returned when an operation is not valid in the
	// current state.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// StateChange is published on every transition.
type StateChange struct {
	SessionID string
	From      State
	To        State
}

// Turn is one completed remote turn, as persisted by a Recorder.
type Turn struct {
	SessionID string
	Locale    string
	Source    string
	Inputs    []string
	State     State
	Verdict   interpreter.Verdict
	CreatedAt time.Time
}
