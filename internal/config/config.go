// Package config loads server settings from a YAML file with environment
// overrides, and carries the tally settings the engine consumes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// TallyConfig holds the plant-floor settings passed to the recorder and the
// tally sheet builder.
type TallyConfig struct {
	// DefaultHeadsAmount is recorded as heads for weight-driven entries.
	DefaultHeadsAmount int `yaml:"default_heads_amount"`

	// AcceptableDifferenceThreshold is how many bags the tally-er and
	// dispatcher counts may differ by before a classification is flagged.
	AcceptableDifferenceThreshold int `yaml:"acceptable_difference_threshold"`
}

// DefaultTallyConfig returns the upstream defaults.
func DefaultTallyConfig() TallyConfig {
	return TallyConfig{DefaultHeadsAmount: 15}
}

// Validate checks the settings are usable.
func (c TallyConfig) Validate() error {
	if c.DefaultHeadsAmount < 0 {
		return fmt.Errorf("default_heads_amount must be non-negative, got %d", c.DefaultHeadsAmount)
	}
	if c.AcceptableDifferenceThreshold < 0 {
		return fmt.Errorf("acceptable_difference_threshold must be non-negative, got %d", c.AcceptableDifferenceThreshold)
	}
	return nil
}

type ServerConfig struct {
	Port       int    `yaml:"port"`
	StaticPath string `yaml:"static_path"`
}

// StoreConfig selects where classifications, allocations and entries live.
type StoreConfig struct {
	// Backend is "sqlite" (local database) or "remote" (upstream REST API).
	Backend       string        `yaml:"backend"`
	DBPath        string        `yaml:"db_path"`
	RemoteURL     string        `yaml:"remote_url"`
	RemoteToken   string        `yaml:"remote_token"`
	RemoteTimeout time.Duration `yaml:"remote_timeout"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenDuration time.Duration `yaml:"token_duration"`
	Required      bool          `yaml:"required"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" (tint) or "json"
}

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Tally  TallyConfig  `yaml:"tally"`
}

const (
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// Default returns a config usable for local development.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080, StaticPath: "./static"},
		Store: StoreConfig{
			Backend:       BackendSQLite,
			DBPath:        "./data/tally.db",
			RemoteTimeout: 15 * time.Second,
		},
		Auth:  AuthConfig{TokenDuration: 24 * time.Hour},
		Log:   LogConfig{Level: "info", Format: "text"},
		Tally: DefaultTallyConfig(),
	}
}

// Load reads path (if it exists) over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.DBPath == "" {
			return errors.New("store.db_path is required for the sqlite backend")
		}
	case BackendRemote:
		if c.Store.RemoteURL == "" {
			return errors.New("store.remote_url is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required when auth.required is set")
	}
	return c.Tally.Validate()
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.Server.StaticPath, "STATIC_PATH")
	envOverride(&cfg.Store.Backend, "TALLY_STORE_BACKEND")
	envOverride(&cfg.Store.DBPath, "DB_PATH")
	envOverride(&cfg.Store.RemoteURL, "TALLY_REMOTE_URL")
	envOverride(&cfg.Store.RemoteToken, "TALLY_REMOTE_TOKEN")
	envOverride(&cfg.Auth.JWTSecret, "JWT_SECRET")
	envOverride(&cfg.Log.Level, "LOG_LEVEL")
	envOverride(&cfg.Log.Format, "LOG_FORMAT")

	for _, o := range []struct {
		dst *int
		key string
	}{
		{&cfg.Server.Port, "PORT"},
		{&cfg.Tally.DefaultHeadsAmount, "TALLY_DEFAULT_HEADS_AMOUNT"},
		{&cfg.Tally.AcceptableDifferenceThreshold, "TALLY_ACCEPTABLE_DIFFERENCE_THRESHOLD"},
	} {
		if err := envOverrideInt(o.dst, o.key); err != nil {
			return err
		}
	}
	if err := envOverrideDuration(&cfg.Store.RemoteTimeout, "TALLY_REMOTE_TIMEOUT"); err != nil {
		return err
	}
	if v := os.Getenv("TALLY_AUTH_REQUIRED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TALLY_AUTH_REQUIRED %q: %w", v, err)
		}
		cfg.Auth.Required = b
	}
	return nil
}

func envOverride(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envOverrideInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func envOverrideDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
