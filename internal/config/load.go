package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. HABIT_SERVER_PORT or HABIT_DATABASE_URL.
const EnvPrefix = "HABIT"

// ConfigurationError reports configuration that is missing or invalid.
// The server refuses to start when Load returns one.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type loadOptions struct {
	configFile string
}

// Option customizes Load.
type Option func(*loadOptions)

// WithConfigFile reads settings from the given file instead of searching
// for config.yaml in the working directory.
func WithConfigFile(path string) Option {
	return func(o *loadOptions) {
		o.configFile = path
	}
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or a *ConfigurationError if loading or
// validation fails.
func Load(opts ...Option) (*Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	setDefaults(v)

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.configFile != "" || !errors.As(err, &notFound) {
			return nil, &ConfigurationError{Message: "failed to read config file", Err: err}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigurationError{Message: "failed to unmarshal config", Err: err}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags and the constraints that tags
// cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ConfigurationError{
				Field:   verrs[0].Namespace(),
				Message: fmt.Sprintf("validation failed on '%s'", verrs[0].Tag()),
				Err:     err,
			}
		}
		return &ConfigurationError{Message: "validation failed", Err: err}
	}

	if _, err := time.LoadLocation(cfg.Ledger.Timezone); err != nil {
		return &ConfigurationError{
			Field:   "Config.Ledger.Timezone",
			Message: "validation failed: unknown time zone",
			Err:     err,
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.log_file", "")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime", 24*time.Hour)
	v.SetDefault("ledger.timezone", "UTC")
}
