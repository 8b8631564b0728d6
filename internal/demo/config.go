package demo

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// KeySource selects where the server loads its RSA key pair from.
type KeySource string

const (
	KeySourceEphemeral KeySource = "ephemeral"
	KeySourceFile      KeySource = "file"
	KeySourceEnv       KeySource = "env"
	KeySourceRedis     KeySource = "redis"
)

// Config is the process configuration of the demo server, read from the
// environment.
type Config struct {
	Env      string `env:"ENV" envDefault:"dev"`
	Addr     string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes      int64         `env:"HTTP_MAX_BODY_BYTES" envDefault:"16384"`

	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Token issuance on GET /jwt is throttled process-wide.
	IssueRate  float64 `env:"ISSUE_RATE" envDefault:"50"`
	IssueBurst int     `env:"ISSUE_BURST" envDefault:"10"`

	Keys       KeysConfig       `envPrefix:"KEYS_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	OTel       OTelConfig       `envPrefix:"OTEL_"`
	ClientRate ClientRateConfig `envPrefix:"CLIENT_RATE_"`

	AuditEnabled   bool `env:"AUDIT_ENABLED" envDefault:"true"`
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// KeysConfig selects and locates key material.
type KeysConfig struct {
	Source         KeySource `env:"SOURCE" envDefault:"ephemeral"`
	KeyID          string    `env:"ID" envDefault:"demo"`
	PrivateKeyPath string    `env:"PRIVATE_KEY_PATH"`
	PublicKeyPath  string    `env:"PUBLIC_KEY_PATH"`
	RedisPrefix    string    `env:"REDIS_PREFIX" envDefault:"jwtkey"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// ClientRateConfig enables per-client throttling shared through Redis.
type ClientRateConfig struct {
	Enabled               bool          `env:"ENABLED" envDefault:"false"`
	MaxIssuePerWindow     int           `env:"MAX_ISSUE" envDefault:"60"`
	IssueWindow           time.Duration `env:"ISSUE_WINDOW" envDefault:"1m"`
	MaxVerifyFailures     int           `env:"MAX_VERIFY_FAILURES" envDefault:"20"`
	VerifyFailureCooldown time.Duration `env:"VERIFY_FAILURE_COOLDOWN" envDefault:"5m"`
}

// OTelConfig enables OTLP metric export when Endpoint is set.
type OTelConfig struct {
	Endpoint    string        `env:"ENDPOINT"`
	Insecure    bool          `env:"INSECURE" envDefault:"true"`
	ServiceName string        `env:"SERVICE_NAME" envDefault:"jwtdemo"`
	Interval    time.Duration `env:"METRICS_INTERVAL" envDefault:"15s"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Keys.Source {
	case KeySourceEphemeral, KeySourceEnv, KeySourceRedis:
	case KeySourceFile:
		if c.Keys.PrivateKeyPath == "" && c.Keys.PublicKeyPath == "" {
			return fmt.Errorf("KEYS_SOURCE=file requires KEYS_PRIVATE_KEY_PATH or KEYS_PUBLIC_KEY_PATH")
		}
	default:
		return fmt.Errorf("unknown KEYS_SOURCE %q", c.Keys.Source)
	}
	if c.Keys.Source == KeySourceEphemeral && c.Env == "prod" {
		return fmt.Errorf("KEYS_SOURCE=ephemeral is not allowed when ENV=prod")
	}
	if c.IssueRate <= 0 || c.IssueBurst <= 0 {
		return fmt.Errorf("ISSUE_RATE and ISSUE_BURST must be > 0")
	}
	if c.ClientRate.Enabled && (c.ClientRate.IssueWindow <= 0 || c.ClientRate.VerifyFailureCooldown <= 0) {
		return fmt.Errorf("CLIENT_RATE windows must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_BODY_BYTES must be > 0")
	}
	return nil
}

// SlogLevel maps LogLevel onto slog levels, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
