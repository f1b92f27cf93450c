package interpreter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// envelope wraps text the way generateContent does.
func envelope(t *testing.T, text string) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	require.NoError(t, err)
	return b
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeminiClient("test-key",
		WithEndpoint(srv.URL),
		WithModel("test-model"),
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func TestGeminiClient_Interpret(t *testing.T) {
	var body gjson.Result
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = gjson.ParseBytes(raw)

		_, _ = w.Write(envelope(t, `{"output":"10","explanation":"Well done!","isError":false,"needsInput":false}`))
	})

	v, err := client.Interpret(context.Background(), Request{
		SourceCode:  "x = int(input())\nprint(x * 2)",
		PriorInputs: []string{"5"},
		Locale:      "en",
	})
	require.NoError(t, err)
	require.Equal(t, Verdict{Output: "10", Explanation: "Well done!"}, v)

	prompt := body.Get("contents.0.parts.0.text").String()
	require.Contains(t, prompt, `User provided inputs (in order): ["5"]`)
	require.Contains(t, prompt, "print(x * 2)")
	require.Equal(t, "user", body.Get("contents.0.role").String())
	require.Contains(t, body.Get("systemInstruction.parts.0.text").String(), "The current year is 2026.")
	require.Equal(t, "application/json", body.Get("generationConfig.responseMimeType").String())
	require.Equal(t, `["output","explanation","isError","needsInput"]`, body.Get("generationConfig.responseSchema.required").Raw)
}

func TestGeminiClient_Interpret_MalformedText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelope(t, `{"output":"1"}`))
	})

	_, err := client.Interpret(context.Background(), Request{SourceCode: "print(1)"})

	var me *MalformedResponseError
	require.ErrorAs(t, err, &me)
	require.Equal(t, []string{"explanation", "isError", "needsInput"}, me.Missing)
}

func TestGeminiClient_Interpret_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Interpret(context.Background(), Request{SourceCode: "print(1)"})

	var me *MalformedResponseError
	require.ErrorAs(t, err, &me)
}

func TestGeminiClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		body      string
		auth      bool
		retryable bool
	}{
		{
			name:      "rate limited",
			code:      429,
			body:      `{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`,
			retryable: true,
		},
		{
			name:      "overloaded",
			code:      503,
			body:      `{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`,
			retryable: true,
		},
		{
			name: "invalid key",
			code: 400,
			body: `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			auth: true,
		},
		{
			name: "unknown entity",
			code: 404,
			body: `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`,
			auth: true,
		},
		{
			name: "permission denied",
			code: 403,
			body: `{"error":{"code":403,"message":"Method doesn't allow unregistered callers.","status":"PERMISSION_DENIED"}}`,
			auth: true,
		},
		{
			name:      "plain text server error",
			code:      500,
			body:      "internal error",
			retryable: true,
		},
		{
			name: "bad request",
			code: 400,
			body: `{"error":{"code":400,"message":"Invalid JSON payload received.","status":"INVALID_ARGUMENT"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Interpret(context.Background(), Request{SourceCode: "print(1)"})
			require.Error(t, err)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			require.Equal(t, tt.code, se.Code)
			require.Equal(t, tt.auth, IsAuthError(err))
			require.Equal(t, tt.retryable, Retryable(err))
		})
	}
}

func TestGeminiClient_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	t.Cleanup(srv.Close)

	client := NewGeminiClient("", WithEndpoint(srv.URL))
	_, err := client.Interpret(context.Background(), Request{SourceCode: "print(1)"})

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	require.False(t, called)
}

func TestGeminiClient_Generate(t *testing.T) {
	var body gjson.Result
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = gjson.ParseBytes(raw)
		_, _ = w.Write(envelope(t, "Try a for loop!"))
	})

	got, err := client.Generate(context.Background(), "en", "help me")
	require.NoError(t, err)
	require.Equal(t, "Try a for loop!", got)
	require.Equal(t, "help me", body.Get("contents.0.parts.0.text").String())
	require.False(t, body.Get("generationConfig").Exists())
}

func TestGeminiClient_Generate_Blocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := client.Generate(context.Background(), "en", "x")
	require.EqualError(t, err, "prompt blocked: SAFETY")
}

func TestGeminiClient_TransportErrorRedactsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewGeminiClient("secret-key-123", WithEndpoint(srv.URL))
	_, err := client.Generate(context.Background(), "en", "x")

	require.Error(t, err)
	require.NotContains(t, err.Error(), "secret-key-123")
	require.Contains(t, err.Error(), "REDACTED")
}
