package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/pytutor/internal/tracing"
)

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestDefaults_Values(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, "vi", cfg.Locale)
	require.Equal(t, 1, cfg.Retry.MaxRetries)
	require.Equal(t, time.Second, cfg.Retry.InitialDelay)
	require.Equal(t, 2.0, cfg.Retry.Multiplier)
	require.Equal(t, 4, cfg.Editor.IndentWidth)
	require.Equal(t, "GEMINI_API_KEY", cfg.Interpreter.APIKeyEnv)
	require.False(t, cfg.Tracing.Enabled)
	require.Empty(t, cfg.Highlight.Palette)
	require.True(t, cfg.History.Enabled)
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(DefaultConfigTemplate())))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	defaults := Defaults()
	require.Equal(t, defaults.Locale, cfg.Locale)
	require.Equal(t, defaults.Interpreter.Model, cfg.Interpreter.Model)
	require.Equal(t, defaults.Interpreter.APIKeyEnv, cfg.Interpreter.APIKeyEnv)
	require.Equal(t, defaults.Interpreter.Timeout, cfg.Interpreter.Timeout)
	require.Equal(t, defaults.Retry, cfg.Retry)
	require.Equal(t, defaults.Editor, cfg.Editor)
	require.Equal(t, defaults.Highlight.CacheTTL, cfg.Highlight.CacheTTL)
	require.Equal(t, defaults.Highlight.Gutter, cfg.Highlight.Gutter)
	require.Equal(t, defaults.Watch, cfg.Watch)
	require.True(t, cfg.History.Enabled)
}

func TestRetryConfig_Policy(t *testing.T) {
	p := RetryConfig{MaxRetries: 3, InitialDelay: 250 * time.Millisecond, Multiplier: 3}.Policy()

	require.Equal(t, 3, p.MaxRetries)
	require.Equal(t, 250*time.Millisecond, p.InitialDelay)
	require.Equal(t, 3.0, p.Multiplier)
	require.NotNil(t, p.Classify)
	require.NotNil(t, p.Sleep)
}

func TestRetryConfig_PolicyZeroValuesUseDefaults(t *testing.T) {
	p := RetryConfig{}.Policy()

	require.Equal(t, 0, p.MaxRetries)
	require.Equal(t, time.Second, p.InitialDelay)
	require.Equal(t, 2.0, p.Multiplier)
}

func TestInterpreterConfig_APIKey(t *testing.T) {
	t.Setenv("PYTUTOR_TEST_KEY", "secret")
	require.Equal(t, "secret", InterpreterConfig{APIKeyEnv: "PYTUTOR_TEST_KEY"}.APIKey())

	t.Setenv(DefaultAPIKeyEnv, "fallback")
	require.Equal(t, "fallback", InterpreterConfig{}.APIKey())
}

func TestValidateLocale(t *testing.T) {
	require.NoError(t, ValidateLocale(""))
	require.NoError(t, ValidateLocale("en"))
	require.NoError(t, ValidateLocale("es"))

	err := ValidateLocale("xx")
	require.Error(t, err)
	require.Contains(t, err.Error(), `got "xx"`)
}

func TestValidateRetry(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RetryConfig
		wantErr string
	}{
		{name: "zero", cfg: RetryConfig{}},
		{name: "defaults", cfg: Defaults().Retry},
		{name: "negative retries", cfg: RetryConfig{MaxRetries: -1}, wantErr: "retry.max_retries"},
		{name: "negative delay", cfg: RetryConfig{InitialDelay: -time.Second}, wantErr: "retry.initial_delay"},
		{name: "shrinking multiplier", cfg: RetryConfig{Multiplier: 0.5}, wantErr: "retry.multiplier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRetry(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateEditor(t *testing.T) {
	require.NoError(t, ValidateEditor(EditorConfig{}))
	require.NoError(t, ValidateEditor(EditorConfig{IndentWidth: 2}))
	require.Error(t, ValidateEditor(EditorConfig{IndentWidth: -1}))
	require.Error(t, ValidateEditor(EditorConfig{IndentWidth: 17}))
}

func TestValidateHighlight(t *testing.T) {
	require.NoError(t, ValidateHighlight(HighlightConfig{}))
	require.NoError(t, ValidateHighlight(HighlightConfig{Palette: []string{"#fff", "#A855F7"}}))

	err := ValidateHighlight(HighlightConfig{Palette: []string{"#A855F7", "purple"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "highlight.palette[1]")

	require.Error(t, ValidateHighlight(HighlightConfig{CacheTTL: -time.Minute}))
}

func TestValidateHistory(t *testing.T) {
	require.NoError(t, ValidateHistory(HistoryConfig{Enabled: true, DBPath: filepath.Join(t.TempDir(), "h.db")}))
	require.NoError(t, ValidateHistory(HistoryConfig{Enabled: false, DBPath: "relative.db"}))

	err := ValidateHistory(HistoryConfig{Enabled: true, DBPath: "relative.db"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "absolute path")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{name: "defaults", cfg: tracing.DefaultConfig()},
		{name: "sample rate too high", cfg: tracing.Config{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "negative sample rate", cfg: tracing.Config{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "unknown exporter", cfg: tracing.Config{Exporter: "zipkin"}, wantErr: "tracing.exporter"},
		{name: "file without path", cfg: tracing.Config{Enabled: true, Exporter: "file"}, wantErr: "file_path"},
		{name: "otlp without endpoint", cfg: tracing.Config{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint"},
		{name: "disabled file without path", cfg: tracing.Config{Exporter: "file"}},
		{name: "stdout", cfg: tracing.Config{Enabled: true, Exporter: "stdout", SampleRate: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Locale = "klingon"
	cfg.Retry.MaxRetries = -2
	cfg.Watch.Debounce = -time.Second

	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "locale")
	require.Contains(t, err.Error(), "retry.max_retries")
	require.Contains(t, err.Error(), "watch.debounce")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
