package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Events   EventsConfig   `mapstructure:"events"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                int      `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel            string   `mapstructure:"log_level" validate:"required,oneof=debug info warn error fatal"`
	CORSAllowedOrigins  []string `mapstructure:"cors_allowed_origins"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// ReadTimeout returns the configured read timeout.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL     string `mapstructure:"url" validate:"required_if=Storage postgres"`
	Storage string `mapstructure:"storage" validate:"required,oneof=postgres memory"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost" validate:"required,min=4,max=31"`
}

// TokenLifetime returns the access token lifetime.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}

// RedisConfig configures login throttling. An empty Addr disables it.
type RedisConfig struct {
	Addr               string `mapstructure:"addr"`
	Password           string `mapstructure:"password"`
	DB                 int    `mapstructure:"db" validate:"gte=0"`
	LoginLimit         int    `mapstructure:"login_limit" validate:"gt=0"`
	LoginWindowSeconds int    `mapstructure:"login_window_seconds" validate:"gt=0"`
}

// LoginWindow returns the fixed throttling window.
func (c RedisConfig) LoginWindow() time.Duration {
	return time.Duration(c.LoginWindowSeconds) * time.Second
}

// EventsConfig configures the lifecycle event broker. An empty AMQPURL disables publishing.
type EventsConfig struct {
	AMQPURL  string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"exchange" validate:"required"`
}

// SeedConfig holds the credentials used by -seed-admin.
type SeedConfig struct {
	AdminName     string `mapstructure:"admin_name"`
	AdminEmail    string `mapstructure:"admin_email" validate:"omitempty,email"`
	AdminPassword string `mapstructure:"admin_password"`
}
