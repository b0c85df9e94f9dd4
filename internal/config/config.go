package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key to form its environment variable,
// e.g. SPECDOCX_WORKER_COUNT.
const EnvPrefix = "SPECDOCX"

// Defaults for keys whose configured values may fall back.
const (
	DefaultPort              = "8090"
	DefaultWorkerCount       = 4
	DefaultMaxQueueSize      = 100
	DefaultMaxUploadBytes    = 52428800 // 50MB
	DefaultJobTTL            = 1 * time.Hour
	DefaultParseConcurrency  = 4
	DefaultMaxCodeLineLength = 80
	DefaultLineSeparator     = "\n"
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "json"
)

type Config struct {
	Port string `mapstructure:"port"`

	// Auth
	APIKey string `mapstructure:"api_key"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Conversion
	ParseConcurrency  int    `mapstructure:"parse_concurrency"`
	Template          string `mapstructure:"template"`
	MaxCodeLineLength int    `mapstructure:"max_code_line_length"`
	LineSeparator     string `mapstructure:"line_separator"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// NewViper returns a viper instance with every key defaulted and bound to
// the environment. When configFile is empty, specdocx.yaml is looked up in
// the working directory and ~/.config/specdocx and may be absent.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("api_key", "")
	v.SetDefault("worker_count", DefaultWorkerCount)
	v.SetDefault("max_queue_size", DefaultMaxQueueSize)
	v.SetDefault("max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("job_ttl", DefaultJobTTL)
	v.SetDefault("parse_concurrency", DefaultParseConcurrency)
	v.SetDefault("template", "")
	v.SetDefault("max_code_line_length", DefaultMaxCodeLineLength)
	v.SetDefault("line_separator", DefaultLineSeparator)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log_format", DefaultLogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName("specdocx")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "specdocx"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration from v. Out-of-range values fall back to
// their defaults.
func Load(v *viper.Viper) Config {
	cfg := Config{
		Port:              v.GetString("port"),
		APIKey:            v.GetString("api_key"),
		WorkerCount:       v.GetInt("worker_count"),
		MaxQueueSize:      v.GetInt("max_queue_size"),
		MaxUploadBytes:    v.GetInt64("max_upload_bytes"),
		JobTTL:            v.GetDuration("job_ttl"),
		ParseConcurrency:  v.GetInt("parse_concurrency"),
		Template:          v.GetString("template"),
		MaxCodeLineLength: v.GetInt("max_code_line_length"),
		LineSeparator:     v.GetString("line_separator"),
		LogLevel:          strings.ToLower(v.GetString("log_level")),
		LogFormat:         strings.ToLower(v.GetString("log_format")),
	}

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = DefaultMaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = DefaultJobTTL
	}
	if cfg.ParseConcurrency <= 0 {
		cfg.ParseConcurrency = DefaultParseConcurrency
	}
	if cfg.MaxCodeLineLength <= 0 {
		cfg.MaxCodeLineLength = DefaultMaxCodeLineLength
	}
	if cfg.LineSeparator == "" {
		cfg.LineSeparator = DefaultLineSeparator
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		cfg.LogFormat = DefaultLogFormat
	}

	return cfg
}

// Validate checks the settings the conversion service needs.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("SPECDOCX_API_KEY is required")
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger returns a logger writing to w in the configured format.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[c.LogLevel]}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
