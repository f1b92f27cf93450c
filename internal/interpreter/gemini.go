package interpreter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/pytutor/internal/log"
)

// Defaults for GeminiClient.
const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-3-flash-preview"
	DefaultTimeout  = 60 * time.Second
)

// GeminiClient calls the generateContent REST method.
type GeminiClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a GeminiClient.
type Option func(*GeminiClient)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(c *GeminiClient) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *GeminiClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock sets the time source used for the reference year in prompts.
func WithClock(now func() time.Time) Option {
	return func(c *GeminiClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewGeminiClient creates a client authenticating with apiKey.
func NewGeminiClient(apiKey string, opts ...Option) *GeminiClient {
	c := &GeminiClient{
		endpoint:   DefaultEndpoint,
		model:      DefaultModel,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Interpreter = (*GeminiClient)(nil)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
	ResponseSchema   any    `json:"responseSchema,omitempty"`
}

// verdictSchema constrains the model's JSON output.
var verdictSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"output":      map[string]any{"type": "STRING"},
		"explanation": map[string]any{"type": "STRING"},
		"isError":     map[string]any{"type": "BOOLEAN"},
		"errorLines":  map[string]any{"type": "ARRAY", "items": map[string]any{"type": "INTEGER"}},
		"needsInput":  map[string]any{"type": "BOOLEAN"},
		"inputPrompt": map[string]any{"type": "STRING"},
	},
	"required": []string{"output", "explanation", "isError", "needsInput"},
}

// Interpret simulates one execution turn.
func (c *GeminiClient) Interpret(ctx context.Context, req Request) (Verdict, error) {
	body := generateRequest{
		Contents:          []content{{Role: "user", Parts: []part{{Text: InterpretPrompt(req)}}}},
		SystemInstruction: &content{Parts: []part{{Text: IdentityPrompt(req.Locale, c.now())}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   verdictSchema,
		},
	}

	text, err := c.generate(ctx, body)
	if err != nil {
		return Verdict{}, err
	}
	return ParseVerdict(text)
}

// Generate sends a free-text prompt and returns the model's reply. An empty
// reply is not an error.
func (c *GeminiClient) Generate(ctx context.Context, locale, prompt string) (string, error) {
	body := generateRequest{
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{Text: IdentityPrompt(locale, c.now())}}},
	}
	return c.generate(ctx, body)
}

func (c *GeminiClient) generate(ctx context.Context, body generateRequest) (string, error) {
	if c.apiKey == "" {
		return "", &AuthError{Err: errors.New("API key not set")}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s: %w", c.model, redact(err, c.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("gemini.model", c.model),
		attribute.Int("http.status_code", resp.StatusCode),
	)
	log.Debug(log.CatInterp, "generateContent", "model", c.model, "status", resp.StatusCode,
		"bytes", len(respBody), "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, respBody)
	}

	doc := gjson.ParseBytes(respBody)
	text := doc.Get("candidates.0.content.parts.0.text")
	if !text.Exists() {
		if reason := doc.Get("promptFeedback.blockReason").String(); reason != "" {
			return "", fmt.Errorf("prompt blocked: %s", reason)
		}
		return "", nil
	}
	return text.String(), nil
}

// statusError maps an error body to *StatusError, wrapped in *AuthError when
// the service rejected the credential.
func statusError(code int, body []byte) error {
	doc := gjson.ParseBytes(body)
	se := &StatusError{
		Code:    code,
		Status:  doc.Get("error.status").String(),
		Message: doc.Get("error.message").String(),
	}
	if se.Message == "" {
		se.Message = strings.TrimSpace(string(body))
	}

	switch {
	case se.Status == "PERMISSION_DENIED" || se.Status == "UNAUTHENTICATED":
		return &AuthError{Err: se}
	case code == http.StatusUnauthorized:
		return &AuthError{Err: se}
	case IsAuthError(se):
		return &AuthError{Err: se}
	}
	return se
}

// redact removes the API key from transport errors, which include the URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}
