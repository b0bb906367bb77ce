package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKDESK_SERVER_PORT.
const EnvPrefix = "TASKDESK"

var defaults = map[string]any{
	"server.port":                  8080,
	"server.log_level":             "info",
	"server.cors_allowed_origins":  []string{"*"},
	"server.read_timeout_seconds":  15,
	"server.write_timeout_seconds": 15,
	"database.url":                 "",
	"database.storage":             StoragePostgres,
	"auth.jwt_secret":              "",
	"auth.token_lifetime_minutes":  1440,
	"auth.bcrypt_cost":             10,
	"redis.addr":                   "",
	"redis.password":               "",
	"redis.db":                     0,
	"redis.login_limit":            10,
	"redis.login_window_seconds":   60,
	"events.amqp_url":              "",
	"events.exchange":              "taskdesk.events",
	"seed.admin_name":              "",
	"seed.admin_email":             "",
	"seed.admin_password":          "",
}

// Unprefixed variables accepted for compatibility with existing deployments.
var legacyEnv = map[string]string{
	"server.port":     "PORT",
	"auth.jwt_secret": "JWT_SECRET",
	"database.url":    "DATABASE_URL",
}

// Load configuration from defaults, an optional config.yaml in the working
// directory, an optional .env file and environment variables, in increasing order
// of precedence. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return load(v)
}

// loadDotEnv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	return nil
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", legacy, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
