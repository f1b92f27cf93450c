// Package interpreter talks to the remote model that simulates running a
// Python program. The model is treated as a black box: it receives the source,
// every input supplied so far and a target language, and returns a Verdict.
package interpreter

import "context"

// Request is one simulated execution turn. PriorInputs is the complete input
// history; the remote side keeps no state between turns.
type Request struct {
	SourceCode  string
	PriorInputs []string
	Locale      string
}

// Verdict is the structured result of one turn.
type Verdict struct {
	Output      string `json:"output"`
	Explanation string `json:"explanation"`
	IsError     bool   `json:"isError"`
	NeedsInput  bool   `json:"needsInput"`
	// InputPrompt is empty when the model did not supply one.
	InputPrompt string `json:"inputPrompt,omitempty"`
	// ErrorLines holds 1-based line numbers, in the order the model sent them.
	ErrorLines []int `json:"errorLines,omitempty"`
}

// Interpreter runs one turn. Implementations make a single attempt; retries
// are layered on by the caller.
type Interpreter interface {
	Interpret(ctx context.Context, req Request) (Verdict, error)
}

// Difficulty selects the tone and depth of tutor replies.
type Difficulty string

const (
	Beginner Difficulty = "beginner"
	Advanced Difficulty = "advanced"
	// HSG is competitive-programming (provincial gifted student exam) level.
	HSG Difficulty = "hsg"
)

// IsValid reports whether d is a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case Beginner, Advanced, HSG:
		return true
	}
	return false
}
