// Package config loads runtime settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Registry backends.
const (
	RegistryMemory   = "memory"
	RegistryRedis    = "redis"
	RegistryPostgres = "postgres"
)

// Audit sinks.
const (
	AuditLog   = "log"
	AuditKafka = "kafka"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    Server      `yaml:"server"`
	Log       Log         `yaml:"log"`
	Document  Document    `yaml:"document"`
	Guide     Guide       `yaml:"guide"`
	Artifacts Artifacts   `yaml:"artifacts"`
	Redis     RedisConfig `yaml:"redis"`
	Postgres  Postgres    `yaml:"postgres"`
	Audit     Audit       `yaml:"audit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `yaml:"addr"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Document configures PDF rendering.
type Document struct {
	TemplatesDir    string        `yaml:"templates_dir"`
	WkhtmltopdfPath string        `yaml:"wkhtmltopdf_path"`
	RenderTimeout   time.Duration `yaml:"render_timeout"`
}

// Guide configures the language model. The API key is only read from the
// environment.
type Guide struct {
	APIKey  string        `yaml:"-"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// Consecutive failures before drafting is skipped for BreakerCooldown.
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// Artifacts configures the output directory, the registry and cleanup.
type Artifacts struct {
	OutputDir       string        `yaml:"output_dir"`
	Registry        string        `yaml:"registry"`
	RegistrySize    int           `yaml:"registry_size"`
	Retention       time.Duration `yaml:"retention"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// RedisConfig configures the Redis client used by the redis registry.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Postgres configures the postgres registry.
type Postgres struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// Audit selects where audit events go.
type Audit struct {
	Sink    string   `yaml:"sink"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Buffer  int      `yaml:"buffer"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: Server{
			Addr:              ":8000",
			AllowedOrigins:    []string{"http://localhost:3000"},
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Log: Log{Level: "info", Format: "json"},
		Document: Document{
			TemplatesDir:  "assets/templates",
			RenderTimeout: 30 * time.Second,
		},
		Guide: Guide{
			Model:           "gpt-4-turbo-preview",
			Timeout:         60 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Artifacts: Artifacts{
			OutputDir:       "data/output",
			Registry:        RegistryMemory,
			RegistrySize:    10_000,
			Retention:       time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: Postgres{MaxOpenConns: 10},
		Audit: Audit{
			Sink:   AuditLog,
			Topic:  "praticai.audit.documents",
			Buffer: 1024,
		},
	}
}

// ValidationError lists the settings that failed validation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

type options struct {
	file      string
	env       map[string]string
	systemEnv bool
}

// Option configures Load.
type Option func(*options)

// WithFile reads a YAML file before applying the environment.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithEnvMap supplies environment values that take precedence over the
// process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *options) {
		o.env = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *options) {
		o.systemEnv = false
	}
}

// FromEnv loads the configuration, reading the YAML file named by
// PRATICAI_CONFIG when set.
func FromEnv() (Config, error) {
	return Load(WithFile(os.Getenv("PRATICAI_CONFIG")))
}

// Load builds and validates the configuration.
func Load(opts ...Option) (Config, error) {
	o := options{systemEnv: true}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()
	if o.file != "" {
		raw, err := os.ReadFile(o.file)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := o.env[key]; ok {
			return v, true
		}
		if o.systemEnv {
			return os.LookupEnv(key)
		}
		return "", false
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
	var errs []error

	setString(lookup, "PRATICAI_ADDR", &cfg.Server.Addr)
	setCSV(lookup, "PRATICAI_ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)
	setString(lookup, "LOG_LEVEL", &cfg.Log.Level)
	setString(lookup, "LOG_FORMAT", &cfg.Log.Format)

	setString(lookup, "PRATICAI_TEMPLATES_DIR", &cfg.Document.TemplatesDir)
	setString(lookup, "WKHTMLTOPDF_PATH", &cfg.Document.WkhtmltopdfPath)
	errs = append(errs, setDuration(lookup, "PRATICAI_RENDER_TIMEOUT", &cfg.Document.RenderTimeout))

	setString(lookup, "OPENAI_API_KEY", &cfg.Guide.APIKey)
	setString(lookup, "OPENAI_MODEL", &cfg.Guide.Model)
	setString(lookup, "OPENAI_BASE_URL", &cfg.Guide.BaseURL)
	errs = append(errs, setDuration(lookup, "PRATICAI_GUIDE_TIMEOUT", &cfg.Guide.Timeout))

	setString(lookup, "PRATICAI_OUTPUT_DIR", &cfg.Artifacts.OutputDir)
	setString(lookup, "PRATICAI_REGISTRY", &cfg.Artifacts.Registry)
	errs = append(errs,
		setInt(lookup, "PRATICAI_REGISTRY_SIZE", &cfg.Artifacts.RegistrySize),
		setDuration(lookup, "PRATICAI_RETENTION", &cfg.Artifacts.Retention),
		setDuration(lookup, "PRATICAI_CLEANUP_INTERVAL", &cfg.Artifacts.CleanupInterval),
	)

	setString(lookup, "REDIS_URL", &cfg.Redis.URL)
	setString(lookup, "DATABASE_URL", &cfg.Postgres.URL)

	setString(lookup, "PRATICAI_AUDIT_SINK", &cfg.Audit.Sink)
	setCSV(lookup, "KAFKA_BROKERS", &cfg.Audit.Brokers)
	setString(lookup, "KAFKA_AUDIT_TOPIC", &cfg.Audit.Topic)

	return errors.Join(errs...)
}

// Validate rejects inconsistent settings.
func (c Config) Validate() error {
	var problems []string
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr is required")
	}
	if c.Document.TemplatesDir == "" {
		problems = append(problems, "document.templates_dir is required")
	}
	if c.Document.RenderTimeout <= 0 {
		problems = append(problems, "document.render_timeout must be positive")
	}
	if c.Guide.Timeout <= 0 {
		problems = append(problems, "guide.timeout must be positive")
	}
	if c.Artifacts.OutputDir == "" {
		problems = append(problems, "artifacts.output_dir is required")
	}
	if c.Artifacts.Retention < 0 {
		problems = append(problems, "artifacts.retention must not be negative")
	}
	switch c.Artifacts.Registry {
	case RegistryMemory:
	case RegistryRedis:
		if c.Redis.URL == "" {
			problems = append(problems, "redis.url is required for the redis registry")
		}
	case RegistryPostgres:
		if c.Postgres.URL == "" {
			problems = append(problems, "postgres.url is required for the postgres registry")
		}
	default:
		problems = append(problems, fmt.Sprintf("artifacts.registry %q is not one of memory, redis, postgres", c.Artifacts.Registry))
	}
	switch c.Audit.Sink {
	case AuditLog:
	case AuditKafka:
		if len(c.Audit.Brokers) == 0 {
			problems = append(problems, "audit.brokers is required for the kafka sink")
		}
	default:
		problems = append(problems, fmt.Sprintf("audit.sink %q is not one of log, kafka", c.Audit.Sink))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not one of json, text", c.Log.Format))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func setString(lookup func(string) (string, bool), key string, dst *string) {
	if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setCSV(lookup func(string) (string, bool), key string, dst *[]string) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setDuration(lookup func(string) (string, bool), key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func setInt(lookup func(string) (string, bool), key string, dst *int) error {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
