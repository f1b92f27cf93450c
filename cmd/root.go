package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/pytutor/internal/config"
	"github.com/zjrosen/pytutor/internal/infrastructure/sqlite"
	"github.com/zjrosen/pytutor/internal/interpreter"
	"github.com/zjrosen/pytutor/internal/log"
	"github.com/zjrosen/pytutor/internal/paths"
	"github.com/zjrosen/pytutor/internal/pubsub"
	"github.com/zjrosen/pytutor/internal/retry"
	"github.com/zjrosen/pytutor/internal/session"
	"github.com/zjrosen/pytutor/internal/tracing"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race the input loop.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	debugFlag  bool
	logFile    string
	localeFlag string

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "pytutor",
	Short: "A Python tutor for the terminal",
	Long: `pytutor highlights Python code, runs it through a remote interpreter that
explains the result in your language, and offers hints and practice challenges.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/pytutor/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also enabled by PYTUTOR_DEBUG)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"debug log path (default: debug.log)")
	rootCmd.PersistentFlags().StringVarP(&localeFlag, "locale", "l", "",
		"language for explanations (overrides config)")

	_ = viper.BindPFlag("locale", rootCmd.PersistentFlags().Lookup("locale"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("locale", defaults.Locale)
	viper.SetDefault("interpreter.model", defaults.Interpreter.Model)
	viper.SetDefault("interpreter.endpoint", defaults.Interpreter.Endpoint)
	viper.SetDefault("interpreter.api_key_env", defaults.Interpreter.APIKeyEnv)
	viper.SetDefault("interpreter.timeout", defaults.Interpreter.Timeout)
	viper.SetDefault("retry.max_retries", defaults.Retry.MaxRetries)
	viper.SetDefault("retry.initial_delay", defaults.Retry.InitialDelay)
	viper.SetDefault("retry.multiplier", defaults.Retry.Multiplier)
	viper.SetDefault("editor.indent_width", defaults.Editor.IndentWidth)
	viper.SetDefault("highlight.gutter", defaults.Highlight.Gutter)
	viper.SetDefault("highlight.cache_ttl", defaults.Highlight.CacheTTL)
	viper.SetDefault("history.enabled", defaults.History.Enabled)
	viper.SetDefault("history.db_path", defaults.History.DBPath)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .pytutor/config.yaml (current directory)
		// 2. ~/.config/pytutor/config.yaml (user config)
		if _, err := os.Stat(".pytutor/config.yaml"); err == nil {
			viper.SetConfigFile(".pytutor/config.yaml")
		} else {
			viper.AddConfigPath(config.DefaultConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create the user default
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && config.DefaultConfigDir() != "" {
			defaultPath := filepath.Join(config.DefaultConfigDir(), "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setup starts debug logging and validates the loaded configuration.
func setup(_ *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv("PYTUTOR_DEBUG") != "" {
		path := logFile
		if path == "" {
			path = os.Getenv("PYTUTOR_LOG")
		}
		if path == "" {
			path = "debug.log"
		}
		cleanup, err := log.Init(path)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		log.Info(log.CatConfig, "pytutor starting", "version", version, "config", viper.ConfigFileUsed())
	}

	cfg.History.DBPath = paths.Expand(cfg.History.DBPath)
	cfg.Tracing.FilePath = paths.Expand(cfg.Tracing.FilePath)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// configPath returns the config file in use, or the user default.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return filepath.Join(config.DefaultConfigDir(), "config.yaml")
}

// newInterpreter builds the remote client from configuration.
func newInterpreter() (*interpreter.GeminiClient, error) {
	key := cfg.Interpreter.APIKey()
	if key == "" {
		env := cfg.Interpreter.APIKeyEnv
		if env == "" {
			env = config.DefaultAPIKeyEnv
		}
		return nil, fmt.Errorf("no API key: set the %s environment variable", env)
	}
	timeout := cfg.Interpreter.Timeout
	if timeout <= 0 {
		timeout = interpreter.DefaultTimeout
	}
	return interpreter.NewGeminiClient(key,
		interpreter.WithEndpoint(cfg.Interpreter.Endpoint),
		interpreter.WithModel(cfg.Interpreter.Model),
		interpreter.WithHTTPClient(&http.Client{Timeout: timeout}),
	), nil
}

// runtime holds the collaborators a remote-calling command needs.
type runtime struct {
	interp  *interpreter.GeminiClient
	tracer  *tracing.Provider
	history *sqlite.DB
	events  *pubsub.Broker[session.StateChange]
}

func newRuntime() (*runtime, error) {
	interp, err := newInterpreter()
	if err != nil {
		return nil, err
	}

	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	rt := &runtime{
		interp: interp,
		tracer: tp,
		events: pubsub.NewBroker[session.StateChange](),
	}

	if cfg.History.Enabled && cfg.History.DBPath != "" {
		db, err := sqlite.NewDB(cfg.History.DBPath)
		if err != nil {
			// History is optional; runs still work without it.
			log.ErrorErr(log.CatDB, "Failed to open history", err, "path", cfg.History.DBPath)
		} else {
			rt.history = db
		}
	}
	return rt, nil
}

func (rt *runtime) locale() string {
	if cfg.Locale != "" {
		return cfg.Locale
	}
	return interpreter.DefaultLocale
}

// policy is the configured retry policy with auth failures never retried.
func (rt *runtime) policy() retry.Policy {
	p := cfg.Retry.Policy()
	p.Classify = interpreter.Retryable
	return p
}

func (rt *runtime) newSession() *session.Session {
	opts := []session.Option{
		session.WithRetry(rt.policy()),
		session.WithPublisher(rt.events),
		session.WithTracer(rt.tracer.Tracer()),
		session.WithLocale(rt.locale()),
	}
	if rt.history != nil {
		opts = append(opts, session.WithRecorder(rt.history.Runs()))
	}
	return session.New(rt.interp, opts...)
}

func (rt *runtime) newTutor() *interpreter.Tutor {
	return interpreter.NewTutor(rt.interp, rt.policy(), nil)
}

func (rt *runtime) Close() {
	rt.events.Close()
	if rt.history != nil {
		_ = rt.history.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.tracer.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to flush traces", err)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
