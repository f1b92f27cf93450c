package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/pytutor/internal/interpreter"
	"github.com/zjrosen/pytutor/internal/session"
)

// RunModel is a row of the runs table.
type RunModel struct {
	ID          int64
	GUID        string
	Locale      string
	Source      string
	Inputs      string // JSON array
	State       string
	Output      string
	Explanation string
	IsError     bool
	NeedsInput  bool
	InputPrompt *string // nullable
	ErrorLines  *string // nullable, JSON array
	CreatedAt   int64   // Unix milliseconds
}

// Run is a stored turn with its row ID.
type Run struct {
	ID int64
	session.Turn
}

func toRunModel(t session.Turn) (*RunModel, error) {
	inputs := t.Inputs
	if inputs == nil {
		inputs = []string{}
	}
	encodedInputs, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	m := &RunModel{
		GUID:        t.SessionID,
		Locale:      t.Locale,
		Source:      t.Source,
		Inputs:      string(encodedInputs),
		State:       string(t.State),
		Output:      t.Verdict.Output,
		Explanation: t.Verdict.Explanation,
		IsError:     t.Verdict.IsError,
		NeedsInput:  t.Verdict.NeedsInput,
		CreatedAt:   t.CreatedAt.UnixMilli(),
	}
	if t.Verdict.InputPrompt != "" {
		p := t.Verdict.InputPrompt
		m.InputPrompt = &p
	}
	if len(t.Verdict.ErrorLines) > 0 {
		lines, err := json.Marshal(t.Verdict.ErrorLines)
		if err != nil {
			return nil, err
		}
		s := string(lines)
		m.ErrorLines = &s
	}
	return m, nil
}

func (m *RunModel) toRun() (Run, error) {
	state := session.State(m.State)
	if !state.IsValid() {
		return Run{}, fmt.Errorf("unknown state %q", m.State)
	}

	var inputs []string
	if err := json.Unmarshal([]byte(m.Inputs), &inputs); err != nil {
		return Run{}, err
	}
	if len(inputs) == 0 {
		inputs = nil
	}

	v := interpreter.Verdict{
		Output:      m.Output,
		Explanation: m.Explanation,
		IsError:     m.IsError,
		NeedsInput:  m.NeedsInput,
	}
	if m.InputPrompt != nil {
		v.InputPrompt = *m.InputPrompt
	}
	if m.ErrorLines != nil {
		if err := json.Unmarshal([]byte(*m.ErrorLines), &v.ErrorLines); err != nil {
			return Run{}, err
		}
	}

	return Run{
		ID: m.ID,
		Turn: session.Turn{
			SessionID: m.GUID,
			Locale:    m.Locale,
			Source:    m.Source,
			Inputs:    inputs,
			State:     state,
			Verdict:   v,
			CreatedAt: time.UnixMilli(m.CreatedAt).UTC(),
		},
	}, nil
}
