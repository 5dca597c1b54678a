package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata" // zone names resolve on hosts without a zoneinfo database

	"github.com/alexanderramin/tempo/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when Load is given an empty path. A missing file at
// this path is not an error.
const DefaultPath = "tempo.yaml"

// Config is the runtime configuration, loaded from YAML and then
// overridden from TEMPO_* environment variables.
type Config struct {
	DBPath            string          `yaml:"dbPath"`
	LogLevel          string          `yaml:"logLevel"`
	LogFormat         string          `yaml:"logFormat"`
	Timezone          string          `yaml:"timezone"`
	PollInterval      time.Duration   `yaml:"pollInterval"`
	StartupDelay      time.Duration   `yaml:"startupDelay"`
	MaxActivePerOwner int             `yaml:"maxActivePerOwner"`
	DefaultFireTime   string          `yaml:"defaultFireTime"`
	Telegram          TelegramConfig  `yaml:"telegram"`
	Redis             RedisConfig     `yaml:"redis"`
	RateLimit         RateLimitConfig `yaml:"rateLimit"`
}

type TelegramConfig struct {
	Token       string        `yaml:"token"`
	PollTimeout time.Duration `yaml:"pollTimeout"`
	APIURL      string        `yaml:"apiURL"`
}

// RedisConfig is optional; an empty Addr disables inbound rate limiting.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	PerMinute int `yaml:"perMinute"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DBPath:            defaultDBPath(),
		LogLevel:          "info",
		LogFormat:         "text",
		Timezone:          "Europe/Moscow",
		PollInterval:      60 * time.Second,
		StartupDelay:      5 * time.Second,
		MaxActivePerOwner: domain.MaxActiveReminders,
		DefaultFireTime:   "09:00",
		Telegram: TelegramConfig{
			PollTimeout: 30 * time.Second,
			APIURL:      "https://api.telegram.org",
		},
		RateLimit: RateLimitConfig{PerMinute: 20},
	}
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "tempo", "tempo.db")
	}
	return "tempo.db"
}

// Load reads config from path (defaults to DefaultPath), applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := map[string]*string{
		"TEMPO_DB_PATH":           &cfg.DBPath,
		"TEMPO_LOG_LEVEL":         &cfg.LogLevel,
		"TEMPO_LOG_FORMAT":        &cfg.LogFormat,
		"TEMPO_TIMEZONE":          &cfg.Timezone,
		"TEMPO_DEFAULT_FIRE_TIME": &cfg.DefaultFireTime,
		"TEMPO_TELEGRAM_TOKEN":    &cfg.Telegram.Token,
		"TEMPO_TELEGRAM_API_URL":  &cfg.Telegram.APIURL,
		"TEMPO_REDIS_ADDR":        &cfg.Redis.Addr,
		"TEMPO_REDIS_PASSWORD":    &cfg.Redis.Password,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"TEMPO_POLL_INTERVAL":         &cfg.PollInterval,
		"TEMPO_STARTUP_DELAY":         &cfg.StartupDelay,
		"TEMPO_TELEGRAM_POLL_TIMEOUT": &cfg.Telegram.PollTimeout,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"TEMPO_MAX_ACTIVE_PER_OWNER":  &cfg.MaxActivePerOwner,
		"TEMPO_RATE_LIMIT_PER_MINUTE": &cfg.RateLimit.PerMinute,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			*dst = n
		}
	}
	return nil
}

// Validate checks ranges and parses the derived values once so later
// accessors cannot fail.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: dbPath is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("config: pollInterval must be at least 1s, got %s", c.PollInterval)
	}
	if c.StartupDelay < 0 {
		return errors.New("config: startupDelay must not be negative")
	}
	if c.MaxActivePerOwner < 1 {
		return errors.New("config: maxActivePerOwner must be positive")
	}
	if _, err := domain.ParseClockTime(c.DefaultFireTime); err != nil {
		return fmt.Errorf("config: defaultFireTime: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: logFormat must be text or json, got %q", c.LogFormat)
	}
	if c.RateLimit.PerMinute < 0 {
		return errors.New("config: rateLimit.perMinute must not be negative")
	}
	return nil
}

// Location returns the configured zone. Call after Validate.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FireTime returns the parsed default fire time. Call after Validate.
func (c Config) FireTime() domain.ClockTime {
	at, err := domain.ParseClockTime(c.DefaultFireTime)
	if err != nil {
		return domain.MustClockTime(9, 0)
	}
	return at
}
