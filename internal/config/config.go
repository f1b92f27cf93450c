// Package config provides configuration types and defaults for pytutor.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/zjrosen/pytutor/internal/editor"
	"github.com/zjrosen/pytutor/internal/interpreter"
	"github.com/zjrosen/pytutor/internal/log"
	"github.com/zjrosen/pytutor/internal/retry"
	"github.com/zjrosen/pytutor/internal/syntax"
	"github.com/zjrosen/pytutor/internal/tracing"
)

// Config holds all configuration options for pytutor.
type Config struct {
	Locale      string            `mapstructure:"locale"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Editor      EditorConfig      `mapstructure:"editor"`
	Highlight   HighlightConfig   `mapstructure:"highlight"`
	History     HistoryConfig     `mapstructure:"history"`
	Tracing     tracing.Config    `mapstructure:"tracing"`
	Watch       WatchConfig       `mapstructure:"watch"`
}

// InterpreterConfig configures the remote interpreter.
type InterpreterConfig struct {
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself is never stored in the config file.
	APIKeyEnv string        `mapstructure:"api_key_env"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// APIKey reads the key from the configured environment variable.
func (c InterpreterConfig) APIKey() string {
	name := c.APIKeyEnv
	if name == "" {
		name = DefaultAPIKeyEnv
	}
	return os.Getenv(name)
}

// RetryConfig mirrors retry.Policy.
type RetryConfig struct {
	MaxRetries   int           `mapstructure:"max_retries"`
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Multiplier   float64       `mapstructure:"multiplier"`
}

// Policy converts the config to a retry policy using the default classifier.
func (c RetryConfig) Policy() retry.Policy {
	p := retry.Default()
	p.MaxRetries = c.MaxRetries
	if c.InitialDelay > 0 {
		p.InitialDelay = c.InitialDelay
	}
	if c.Multiplier >= 1 {
		p.Multiplier = c.Multiplier
	}
	return p
}

// EditorConfig holds indent editing options.
type EditorConfig struct {
	IndentWidth int `mapstructure:"indent_width"`
}

// HighlightConfig holds syntax highlighting options.
type HighlightConfig struct {
	// Palette lists bracket colours as hex strings, cycled by nesting depth.
	// Empty uses the built-in amber/purple/blue/rose adaptive palette.
	Palette  []string      `mapstructure:"palette"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Gutter   bool          `mapstructure:"gutter"`
}

// HistoryConfig controls run history persistence.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DBPath  string `mapstructure:"db_path"` // Default: ~/.config/pytutor/history.db
}

// WatchConfig holds file watcher options.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultAPIKeyEnv is the environment variable read for the Gemini key.
const DefaultAPIKeyEnv = "GEMINI_API_KEY"

// DefaultDebounce is the watcher debounce window.
const DefaultDebounce = 100 * time.Millisecond

// DefaultConfigDir returns ~/.config/pytutor or empty string if home dir unavailable.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pytutor")
}

// DefaultHistoryPath returns the default run history database path.
func DefaultHistoryPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "history.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()

	return Config{
		Locale: interpreter.DefaultLocale,
		Interpreter: InterpreterConfig{
			Model:     interpreter.DefaultModel,
			Endpoint:  interpreter.DefaultEndpoint,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   interpreter.DefaultTimeout,
		},
		Retry: RetryConfig{
			MaxRetries:   retry.DefaultMaxRetries,
			InitialDelay: retry.DefaultInitialDelay,
			Multiplier:   retry.DefaultMultiplier,
		},
		Editor: EditorConfig{
			IndentWidth: editor.DefaultIndentWidth,
		},
		Highlight: HighlightConfig{
			CacheTTL: syntax.DefaultCacheTTL,
			Gutter:   true,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  DefaultHistoryPath(),
		},
		Tracing: tc,
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateLocale rejects locales without a language mapping.
// An empty locale is valid and means the default.
func ValidateLocale(locale string) error {
	if locale == "" || interpreter.IsSupported(locale) {
		return nil
	}
	return fmt.Errorf("locale must be one of %v, got %q", interpreter.SupportedLocales(), locale)
}

// ValidateInterpreter checks interpreter configuration for errors.
func ValidateInterpreter(c InterpreterConfig) error {
	if c.Timeout < 0 {
		return fmt.Errorf("interpreter.timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// ValidateRetry checks retry configuration for errors.
// Returns nil if the configuration is valid (zero values use defaults).
func ValidateRetry(c RetryConfig) error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("retry.initial_delay must not be negative, got %s", c.InitialDelay)
	}
	if c.Multiplier != 0 && c.Multiplier < 1 {
		return fmt.Errorf("retry.multiplier must be at least 1, got %v", c.Multiplier)
	}
	return nil
}

// ValidateEditor checks editor configuration for errors.
func ValidateEditor(c EditorConfig) error {
	if c.IndentWidth < 0 || c.IndentWidth > 16 {
		return fmt.Errorf("editor.indent_width must be between 1 and 16 (0 uses the default), got %d", c.IndentWidth)
	}
	return nil
}

// ValidateHighlight checks highlight configuration for errors.
// An empty palette is valid and uses the default palette.
func ValidateHighlight(c HighlightConfig) error {
	for i, color := range c.Palette {
		if !hexColor.MatchString(color) {
			return fmt.Errorf("highlight.palette[%d] must be a hex color like \"#F59E0B\", got %q", i, color)
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("highlight.cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	return nil
}

// ValidateHistory checks history configuration for errors.
func ValidateHistory(c HistoryConfig) error {
	if c.Enabled && c.DBPath != "" && !filepath.IsAbs(c.DBPath) {
		return fmt.Errorf("history.db_path must be an absolute path, got %q", c.DBPath)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(c tracing.Config) error {
	if c.SampleRate < 0.0 || c.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", c.SampleRate)
	}

	if c.Exporter != "" {
		switch c.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", c.Exporter)
		}
	}

	if c.Enabled {
		if c.Exporter == "file" && c.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if c.Exporter == "otlp" && c.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ValidateWatch checks watcher configuration for errors.
func ValidateWatch(c WatchConfig) error {
	if c.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Debounce)
	}
	return nil
}

// Validate runs every section validator and joins the failures.
func Validate(cfg Config) error {
	return errors.Join(
		ValidateLocale(cfg.Locale),
		ValidateInterpreter(cfg.Interpreter),
		ValidateRetry(cfg.Retry),
		ValidateEditor(cfg.Editor),
		ValidateHighlight(cfg.Highlight),
		ValidateHistory(cfg.History),
		ValidateTracing(cfg.Tracing),
		ValidateWatch(cfg.Watch),
	)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# pytutor configuration

# Language for explanations, hints and messages: vi (default), en, fr, de, it, pt, es
# Change it with 'pytutor locales --set en'
locale: vi

# Remote interpreter
interpreter:
  model: gemini-3-flash-preview
  # endpoint: https://generativelanguage.googleapis.com/v1beta
  api_key_env: GEMINI_API_KEY   # environment variable holding the API key
  timeout: 60s

# Retry on transient failures (rate limits, 500, 503)
retry:
  max_retries: 1
  initial_delay: 1s
  multiplier: 2

# Editor behaviour
editor:
  indent_width: 4

# Syntax highlighting
highlight:
  gutter: true          # show line numbers
  cache_ttl: 5m         # how long rendered buffers stay memoized
  # Bracket colours, cycled by nesting depth (default: amber, purple, blue, rose)
  # palette:
  #   - "#F59E0B"
  #   - "#A855F7"
  #   - "#3B82F6"
  #   - "#F43F5E"

# Run history (stored locally in SQLite)
history:
  enabled: true
  # db_path: ~/.config/pytutor/history.db

# Watch mode
watch:
  debounce: 100ms

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/pytutor/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
