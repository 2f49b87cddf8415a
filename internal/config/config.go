package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ganot/stocklog/internal/extract"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config defines poller configuration.
type Config struct {
	Items           []string        `yaml:"items" validate:"required,min=1,dive,required"`
	IntervalSeconds int             `yaml:"interval_seconds" validate:"min=1"`
	Timezone        string          `yaml:"timezone" validate:"required"`
	Source          SourceConfig    `yaml:"source"`
	Extract         ExtractConfig   `yaml:"extract"`
	Reconcile       ReconcileConfig `yaml:"reconcile"`
	DB              DBConfig        `yaml:"db"`
	Log             LogConfig       `yaml:"log"`

	location *time.Location
}

type SourceConfig struct {
	URLTemplate    string            `yaml:"url_template" validate:"required,contains={item}"`
	TimeoutSeconds int               `yaml:"timeout_seconds" validate:"min=1"`
	UserAgent      string            `yaml:"user_agent"`
	Headers        map[string]string `yaml:"headers"`
	Tag            string            `yaml:"tag" validate:"required"`
}

type ExtractConfig struct {
	StripChars string `yaml:"strip_chars"`
}

type ReconcileConfig struct {
	FailOnReadError bool `yaml:"fail_on_read_error"`
}

type DBConfig struct {
	Path string `yaml:"path" validate:"required"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Path  string `yaml:"path"`
}

// Interval returns the sleep between polling cycles.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// Location returns the timezone used for local snapshot times.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Timeout returns the per-request feed timeout.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Default returns the built-in configuration. It has no items and so does not
// validate on its own.
func Default() Config {
	return Config{
		IntervalSeconds: 600,
		Timezone:        "Asia/Taipei",
		Source: SourceConfig{
			URLTemplate:    "https://www.kmstation.com/api/product/{item}",
			TimeoutSeconds: 15,
			UserAgent:      "stocklog/1.0",
			Tag:            "kmstation",
		},
		Extract: ExtractConfig{
			StripChars: extract.DefaultStripChars,
		},
		DB: DBConfig{
			Path: "stocklog.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadEnvFiles loads .env.local and .env into the process environment.
// Variables already set are kept, so .env.local wins over .env.
func LoadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// Load reads configuration from defaults, an optional YAML file and
// STOCKLOG_* environment variables, in that order. An empty path falls back
// to STOCKLOG_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("STOCKLOG_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if items := os.Getenv("STOCKLOG_ITEMS"); items != "" {
		cfg.Items = splitList(items)
	}
	if err := envInt("STOCKLOG_INTERVAL_SECONDS", &cfg.IntervalSeconds); err != nil {
		return err
	}
	if tz := os.Getenv("STOCKLOG_TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}
	if tmpl := os.Getenv("STOCKLOG_SOURCE_URL_TEMPLATE"); tmpl != "" {
		cfg.Source.URLTemplate = tmpl
	}
	if err := envInt("STOCKLOG_SOURCE_TIMEOUT_SECONDS", &cfg.Source.TimeoutSeconds); err != nil {
		return err
	}
	if ua := os.Getenv("STOCKLOG_SOURCE_USER_AGENT"); ua != "" {
		cfg.Source.UserAgent = ua
	}
	if tag := os.Getenv("STOCKLOG_SOURCE_TAG"); tag != "" {
		cfg.Source.Tag = tag
	}
	if raw := os.Getenv("STOCKLOG_RECONCILE_FAIL_ON_READ_ERROR"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid STOCKLOG_RECONCILE_FAIL_ON_READ_ERROR: %w", err)
		}
		cfg.Reconcile.FailOnReadError = v
	}
	if dbPath := os.Getenv("STOCKLOG_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("STOCKLOG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("STOCKLOG_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	return nil
}

func envInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) validate() error {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	for i, item := range c.Items {
		c.Items[i] = strings.TrimSpace(item)
	}

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			sort.Strings(fields)
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	c.location = loc

	return nil
}
