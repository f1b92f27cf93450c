package interpreter

import (
	"context"
	"strings"

	"github.com/zjrosen/pytutor/internal/log"
	"github.com/zjrosen/pytutor/internal/retry"
)

// Generator produces free-text replies. GeminiClient implements it.
type Generator interface {
	Generate(ctx context.Context, locale, prompt string) (string, error)
}

var _ Generator = (*GeminiClient)(nil)

// Retryable is the retry classifier for remote calls: transient failures are
// retried, credential failures never are.
func Retryable(err error) bool {
	return !IsAuthError(err) && retry.IsTransient(err)
}

// Tutor answers free-text questions: hints, challenges and guidance.
// Service failures become a busy message; credential failures are returned.
type Tutor struct {
	gen    Generator
	policy retry.Policy
	pick   Picker
}

// NewTutor creates a Tutor. The policy's classifier is replaced by Retryable.
func NewTutor(gen Generator, policy retry.Policy, pick Picker) *Tutor {
	policy.Classify = Retryable
	return &Tutor{gen: gen, policy: policy, pick: pick}
}

// Hint returns learning hints for query about code.
func (t *Tutor) Hint(ctx context.Context, locale, query, code string, d Difficulty) (string, error) {
	return t.ask(ctx, locale, HintPrompt(locale, query, code, d), replyHint)
}

// Challenge returns a new exercise.
func (t *Tutor) Challenge(ctx context.Context, locale string, d Difficulty) (string, error) {
	return t.ask(ctx, locale, ChallengePrompt(locale, d), replyChallenge)
}

// Guidance returns guidance for a challenge produced earlier.
func (t *Tutor) Guidance(ctx context.Context, locale, challenge string) (string, error) {
	return t.ask(ctx, locale, GuidancePrompt(locale, challenge), replyGuidance)
}

func (t *Tutor) ask(ctx context.Context, locale, prompt string, kind replyKind) (string, error) {
	reply, err := retry.Call(ctx, t.policy, func(ctx context.Context) (string, error) {
		return t.gen.Generate(ctx, locale, prompt)
	})
	if err != nil {
		if IsAuthError(err) {
			return "", err
		}
		log.ErrorErr(log.CatInterp, "tutor call failed", err)
		return BusyMessage(locale, t.pick), nil
	}
	if strings.TrimSpace(reply) == "" {
		return emptyReply(locale, kind), nil
	}
	return reply, nil
}
