// Package config loads the controller configuration.
//
// Values are layered: defaults, then an optional YAML file, then a .env
// file, then the process environment. The result is validated once.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvConfigFile = "SPLITSYNC_CONFIG"
	EnvLedgerURL  = "LEDGER_API_URL"
	EnvShareName  = "SHARE_DISPLAY_NAME"
	EnvCurrency   = "DISPLAY_CURRENCY"
	EnvTimeout    = "LEDGER_TIMEOUT"
	EnvListenAddr = "SPLITSYNC_ADDR"
	EnvViewSecret = "VIEW_API_SECRET"
	EnvLogLevel   = "LOG_LEVEL"
)

// Config is read once at startup.
type Config struct {
	// LedgerURL is the base URL of the ledger service.
	LedgerURL string `yaml:"ledger_url" validate:"required,url"`

	// ShareName is the display name whose balance is shown as "your share".
	ShareName string `yaml:"share_name"`

	// Currency is the ISO 4217 code used to format amounts.
	Currency string `yaml:"currency" validate:"required,len=3"`

	// RequestTimeout bounds every ledger request.
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`

	// ListenAddr is where `splitsync serve` listens.
	ListenAddr string `yaml:"listen_addr" validate:"required"`

	// ViewSecret signs view API tokens. Empty disables view API auth.
	ViewSecret string `yaml:"view_secret"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		LedgerURL:      "http://localhost:8085/expensebackend/api",
		ShareName:      "Kiran",
		Currency:       "INR",
		RequestTimeout: 10 * time.Second,
		ListenAddr:     ":8090",
		LogLevel:       "info",
	}
}

// Load reads configuration for the running process. configPath may be
// empty, in which case SPLITSYNC_CONFIG is consulted. envFile defaults to
// ".env"; a missing env file is not an error.
func Load(configPath, envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}
	return LoadFrom(configPath, os.LookupEnv)
}

// LoadFrom layers the YAML file at configPath and the variables reported by
// lookup over the defaults.
func LoadFrom(configPath string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath, _ = lookup(EnvConfigFile)
	}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvLedgerURL, &cfg.LedgerURL)
	set(EnvShareName, &cfg.ShareName)
	set(EnvCurrency, &cfg.Currency)
	set(EnvListenAddr, &cfg.ListenAddr)
	set(EnvViewSecret, &cfg.ViewSecret)
	set(EnvLogLevel, &cfg.LogLevel)

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
