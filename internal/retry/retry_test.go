package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type statusErr struct {
	code int
}

func (e *statusErr) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e *statusErr) StatusCode() int { return e.code }

// fakeSleeper records requested waits without sleeping.
type fakeSleeper struct {
	waits []time.Duration
}

func (f *fakeSleeper) sleep(_ context.Context, d time.Duration) error {
	f.waits = append(f.waits, d)
	return nil
}

func testPolicy(s *fakeSleeper) Policy {
	p := Default()
	p.Sleep = s.sleep
	return p
}

func TestDo_RetryBound(t *testing.T) {
	s := &fakeSleeper{}
	failure := &statusErr{code: 429}
	attempts := 0

	err := testPolicy(s).Do(context.Background(), func(context.Context) error {
		attempts++
		return failure
	})

	require.Same(t, failure, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, []time.Duration{1000 * time.Millisecond}, s.waits)
}

func TestDo_TerminalErrorNotRetried(t *testing.T) {
	s := &fakeSleeper{}
	failure := errors.New("API key not valid")
	attempts := 0

	err := testPolicy(s).Do(context.Background(), func(context.Context) error {
		attempts++
		return failure
	})

	require.Same(t, failure, err)
	require.Equal(t, 1, attempts)
	require.Empty(t, s.waits)
}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	s := &fakeSleeper{}
	attempts := 0

	err := testPolicy(s).Do(context.Background(), func(context.Context) error {
		attempts++
		if attempts == 1 {
			return errors.New("Resource has been EXHAUSTED")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, attempts)
}

func TestDo_DelayDoubles(t *testing.T) {
	s := &fakeSleeper{}
	p := testPolicy(s)
	p.MaxRetries = 3

	attempts := 0
	err := p.Do(context.Background(), func(context.Context) error {
		attempts++
		return &statusErr{code: 503}
	})

	require.Error(t, err)
	require.Equal(t, 4, attempts)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, s.waits)
}

func TestDo_ZeroRetries(t *testing.T) {
	s := &fakeSleeper{}
	p := testPolicy(s)
	p.MaxRetries = 0

	attempts := 0
	_ = p.Do(context.Background(), func(context.Context) error {
		attempts++
		return &statusErr{code: 500}
	})

	require.Equal(t, 1, attempts)
	require.Empty(t, s.waits)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Default()
	attempts := 0
	err := p.Do(ctx, func(context.Context) error {
		attempts++
		return &statusErr{code: 429}
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}

func TestCall_ReturnsValue(t *testing.T) {
	s := &fakeSleeper{}
	attempts := 0

	got, err := Call(context.Background(), testPolicy(s), func(context.Context) (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("rate limit reached")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Len(t, s.waits, 1)
}

func TestCall_NilHooksUseDefaults(t *testing.T) {
	p := Policy{MaxRetries: 1, InitialDelay: time.Millisecond}
	attempts := 0

	_, err := Call(context.Background(), p, func(context.Context) (int, error) {
		attempts++
		return 0, &statusErr{code: 429}
	})

	require.Error(t, err)
	require.Equal(t, 2, attempts)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &statusErr{code: 429}, true},
		{"500", &statusErr{code: 500}, true},
		{"503", &statusErr{code: 503}, true},
		{"wrapped 503", fmt.Errorf("calling model: %w", &statusErr{code: 503}), true},
		{"400", &statusErr{code: 400}, false},
		{"404", &statusErr{code: 404}, false},
		{"quota message", errors.New("Quota exceeded for requests"), true},
		{"limit message", errors.New("Rate LIMIT"), true},
		{"exhausted message", errors.New("RESOURCE_EXHAUSTED"), true},
		{"429 in message", errors.New("got 429 from upstream"), true},
		{"auth", errors.New("API key not valid. Please pass a valid API key."), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
