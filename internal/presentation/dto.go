// Package presentation formats stored runs for command output.
package presentation

import (
	"time"

	"github.com/zjrosen/pytutor/internal/infrastructure/sqlite"
)

// RunDTO represents a stored run for presentation
type RunDTO struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	Locale      string    `json:"locale"`
	State       string    `json:"state"`
	Source      string    `json:"source"`
	Inputs      []string  `json:"inputs"` // always present, empty when none
	Output      string    `json:"output"`
	Explanation string    `json:"explanation"`
	IsError     bool      `json:"is_error"`
	ErrorLines  []int     `json:"error_lines,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FromRun converts a stored run to a DTO
func FromRun(run sqlite.Run) RunDTO {
	inputs := run.Inputs
	if inputs == nil {
		inputs = []string{}
	}
	return RunDTO{
		ID:          run.ID,
		SessionID:   run.SessionID,
		Locale:      run.Locale,
		State:       string(run.State),
		Source:      run.Source,
		Inputs:      inputs,
		Output:      run.Verdict.Output,
		Explanation: run.Verdict.Explanation,
		IsError:     run.Verdict.IsError,
		ErrorLines:  run.Verdict.ErrorLines,
		CreatedAt:   run.CreatedAt,
	}
}

// FromRuns converts stored runs to DTOs
func FromRuns(runs []sqlite.Run) []RunDTO {
	dtos := make([]RunDTO, 0, len(runs))
	for _, r := range runs {
		dtos = append(dtos, FromRun(r))
	}
	return dtos
}
