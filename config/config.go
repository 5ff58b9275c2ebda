package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/renproject/btctransfer"
	"github.com/renproject/btctransfer/clients"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BTCTRANSFER"

type ctxKey string

const configContextKey ctxKey = "btctransfer.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

var (
	ErrEmptyBackendURL    = errors.New("config: backend url is empty")
	ErrInvalidLogLevel    = errors.New("config: invalid log level")
	ErrNegativeDuration   = errors.New("config: durations must not be negative")
	ErrNegativeMaxAttempt = errors.New("config: maxPollAttempts must not be negative")
	ErrUnboundedPolling   = errors.New("config: a zero pollInterval needs maxPollAttempts or pollTimeout")
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

type Config struct {
	BackendURL      string        `yaml:"backendUrl"      split_words:"true"`
	Network         string        `yaml:"network"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"  split_words:"true"`
	PollInterval    time.Duration `yaml:"pollInterval"    split_words:"true"`
	MaxPollAttempts int           `yaml:"maxPollAttempts" split_words:"true"`
	PollTimeout     time.Duration `yaml:"pollTimeout"     split_words:"true"`
	LogLevel        string        `yaml:"logLevel"        split_words:"true"`
	Paths           clients.Paths `yaml:"paths"           ignored:"true"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		BackendURL:      "http://127.0.0.1:8000",
		Network:         "testnet",
		RequestTimeout:  30 * time.Second,
		PollInterval:    30 * time.Second,
		MaxPollAttempts: 240,
		PollTimeout:     0,
		LogLevel:        "info",
		Paths:           clients.DefaultPaths(),
	}
}

// LoadConfig overlays the YAML file at configFile, then BTCTRANSFER_*
// environment variables, onto Default. With an empty configFile the user and
// system locations are tried in turn.
func LoadConfig(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".btctransfer", "btctransfer.yaml"))
	}
	candidates = append(candidates, "/etc/btctransfer/btctransfer.yaml")
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return ErrEmptyBackendURL
	}
	if _, err := btctransfer.NetworkParams(c.Network); err != nil {
		return err
	}
	if c.RequestTimeout < 0 || c.PollInterval < 0 || c.PollTimeout < 0 {
		return ErrNegativeDuration
	}
	if c.MaxPollAttempts < 0 {
		return ErrNegativeMaxAttempt
	}
	if c.PollInterval == 0 && c.MaxPollAttempts == 0 && c.PollTimeout == 0 {
		return ErrUnboundedPolling
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// Level returns the logrus level for LogLevel, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c *Config) TrackerOptions() btctransfer.TrackerOptions {
	return btctransfer.TrackerOptions{
		Interval:    c.PollInterval,
		MaxAttempts: c.MaxPollAttempts,
		Timeout:     c.PollTimeout,
	}
}

func (c *Config) ClientOptions() clients.Options {
	return clients.Options{
		BaseURL: c.BackendURL,
		Timeout: c.RequestTimeout,
		Paths:   c.Paths,
	}
}
