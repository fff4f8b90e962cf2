package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/apibase/internal/endpoint"
)

const (
	defaultPort           = "8080"
	defaultAPIPrefix      = "/api"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "https://*.vercel.app"}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port    string
	Profile string
	// Mode overrides the profile's mode variable when non-empty.
	Mode                 string
	EnvFiles             []string
	APIPrefix            string
	AllowedOrigins       []string
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Profile              string        `yaml:"profile"`
	Mode                 string        `yaml:"mode"`
	EnvFiles             []string      `yaml:"env_files"`
	APIPrefix            string        `yaml:"api_prefix"`
	AllowedOrigins       []string      `yaml:"allowed_origins"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	Profile        *string
	Mode           *string
	EnvFiles       []string
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, err
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Profile:              endpoint.DefaultProfile().Name,
		APIPrefix:            defaultAPIPrefix,
		AllowedOrigins:       append([]string(nil), defaultAllowedOrigins...),
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}
	if yamlCfg.Profile != "" {
		cfg.Profile = yamlCfg.Profile
	}
	if yamlCfg.Mode != "" {
		cfg.Mode = yamlCfg.Mode
	}
	if len(yamlCfg.EnvFiles) > 0 {
		cfg.EnvFiles = yamlCfg.EnvFiles
	}
	if yamlCfg.APIPrefix != "" {
		cfg.APIPrefix = yamlCfg.APIPrefix
	}
	if len(yamlCfg.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, yamlCfg.AllowedOrigins...)
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(yamlCfg.LogLevel))
	}

	var errs error
	durations := []struct {
		name   string
		raw    string
		target *time.Duration
	}{
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}
		*d.target = value
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return errs
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}
	if profile := strings.TrimSpace(os.Getenv("APIBASE_PROFILE")); profile != "" {
		cfg.Profile = profile
	}
	if mode := strings.TrimSpace(os.Getenv("APIBASE_MODE")); mode != "" {
		cfg.Mode = mode
	}
	if files := splitList(os.Getenv("APIBASE_ENV_FILES")); len(files) > 0 {
		cfg.EnvFiles = files
	}
	if prefix := strings.TrimSpace(os.Getenv("API_PREFIX")); prefix != "" {
		cfg.APIPrefix = prefix
	}
	if origins := splitList(os.Getenv("ALLOWED_ORIGINS")); len(origins) > 0 {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origins...)
	}
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	var errs error
	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		value, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("RATE_LIMIT_RPS must be a number (got %q)", rps))
		} else {
			cfg.RateLimitRPS = value
		}
	}
	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		value, err := strconv.Atoi(burst)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("RATE_LIMIT_BURST must be an integer (got %q)", burst))
		} else {
			cfg.RateLimitBurst = value
		}
	}
	return errs
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}
	if overrides.Profile != nil && *overrides.Profile != "" {
		cfg.Profile = *overrides.Profile
	}
	if overrides.Mode != nil && *overrides.Mode != "" {
		cfg.Mode = *overrides.Mode
	}
	if len(overrides.EnvFiles) > 0 {
		cfg.EnvFiles = overrides.EnvFiles
	}
	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*overrides.LogLevel))
	}
	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}
	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig reports every problem in the final configuration at once.
func validateConfig(cfg Config) error {
	var errs error
	if strings.TrimSpace(cfg.Port) == "" {
		errs = multierr.Append(errs, fmt.Errorf("port must not be empty"))
	}
	if _, err := endpoint.LookupProfile(cfg.Profile); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("profile: %w", err))
	}
	if !strings.HasPrefix(cfg.APIPrefix, "/") || strings.HasSuffix(cfg.APIPrefix, "/") {
		errs = multierr.Append(errs, fmt.Errorf("API_PREFIX must start with / and not end with / (got %q)", cfg.APIPrefix))
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", cfg.LogLevel))
	}
	if cfg.RateLimitRPS < 0 {
		errs = multierr.Append(errs, fmt.Errorf("RATE_LIMIT_RPS must be >= 0"))
	}
	if cfg.RateLimitBurst < 0 {
		errs = multierr.Append(errs, fmt.Errorf("RATE_LIMIT_BURST must be >= 0"))
	}
	return errs
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
