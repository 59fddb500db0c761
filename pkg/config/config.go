package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config contains all configuration for the hostlink service
type Config struct {
	// Logging configuration
	Log LogConfig `yaml:"log"`

	// HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Claim issuance/redemption configuration
	Claims ClaimsConfig `yaml:"claims"`

	// Host heartbeat configuration
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
}

// LogConfig configures logging behavior
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" default:"json"`
	Debug  bool   `yaml:"debug" env:"DEBUG" default:"false"`
}

// ConfigureZerolog configures zerolog based on the log configuration
func (c *LogConfig) ConfigureZerolog() {
	level := zerolog.InfoLevel
	if c.Debug {
		level = zerolog.DebugLevel
	} else {
		switch strings.ToLower(c.Level) {
		case "trace":
			level = zerolog.TraceLevel
		case "debug":
			level = zerolog.DebugLevel
		case "info":
			level = zerolog.InfoLevel
		case "warn", "warning":
			level = zerolog.WarnLevel
		case "error":
			level = zerolog.ErrorLevel
		case "fatal":
			level = zerolog.FatalLevel
		case "panic":
			level = zerolog.PanicLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host string `yaml:"host" env:"HOSTLINK_HOST" default:"0.0.0.0"`
	Port int    `yaml:"port" env:"HOSTLINK_PORT" default:"8080"`
}

// DatabaseConfig contains database connection configuration. The
// default DSN carries WAL mode and a busy timeout so that concurrent
// redeemers queue on the write lock instead of surfacing SQLITE_BUSY.
type DatabaseConfig struct {
	Driver string `yaml:"driver" default:"sqlite3"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL" default:"file:./hostlink.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"`
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecretKey string        `yaml:"-" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" default:"24h"`
}

// ClaimsConfig configures claim code issuance and redemption
type ClaimsConfig struct {
	// TTL is the validity window of a claim code from issuance.
	TTL time.Duration `yaml:"ttl" default:"10m"`

	// CodeLength is the number of characters in a claim code.
	CodeLength int `yaml:"code_length" default:"8"`

	// MaxActivePerUser caps concurrently valid unredeemed claims per
	// issuer. Zero disables the cap.
	MaxActivePerUser int `yaml:"max_active_per_user" default:"5"`
}

// HeartbeatConfig configures host online/offline derivation
type HeartbeatConfig struct {
	// OnlineWindow is how recent a heartbeat must be for a host to be
	// reported online.
	OnlineWindow time.Duration `yaml:"online_window" default:"2m"`
}

// Load loads the hostlink configuration from multiple sources
func Load(configFile, envFile string) (*Config, error) {
	cfg := &Config{}

	loader := NewLoader(LoaderConfig{
		ConfigFile:      configFile,
		EnvironmentFile: envFile,
		ServiceName:     "hostlink",
	})

	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load hostlink configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("hostlink configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	if len(c.Auth.JWTSecretKey) < 32 {
		return fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters long")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token TTL must be positive")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if c.Claims.TTL <= 0 {
		return fmt.Errorf("claim TTL must be positive")
	}

	// 8 chars of the 32-symbol alphabet is the 40-bit entropy floor
	// for online-guessing resistance. Shorter codes undercut it.
	if c.Claims.CodeLength < 8 {
		return fmt.Errorf("claim code length must be at least 8")
	}

	if c.Claims.MaxActivePerUser < 0 {
		return fmt.Errorf("max active claims per user must not be negative")
	}

	if c.Heartbeat.OnlineWindow <= 0 {
		return fmt.Errorf("heartbeat online window must be positive")
	}

	return nil
}

// GetListenAddress returns the address the server should listen on
func (c *Config) GetListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
