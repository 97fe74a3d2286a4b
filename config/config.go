package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv          string `mapstructure:"APP_ENV"`
	AppPort         string `mapstructure:"APP_PORT"`
	AllowedOrigins  string `mapstructure:"ALLOWED_ORIGINS"`
	DBDriver        string `mapstructure:"DB_DRIVER"`
	DBHost          string `mapstructure:"DB_HOST"`
	DBPort          string `mapstructure:"DB_PORT"`
	DBUser          string `mapstructure:"DB_USER"`
	DBPassword      string `mapstructure:"DB_PASSWORD"`
	DBName          string `mapstructure:"DB_NAME"`
	DBSQLitePath    string `mapstructure:"DB_SQLITE_PATH"`
	DBMaxIdleConns  int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns  int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	NatsURL         string `mapstructure:"NATS_URL"`
	FlushDebounceMS int    `mapstructure:"FLUSH_DEBOUNCE_MS"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]interface{}{
	"APP_ENV":           "development",
	"APP_PORT":          "8080",
	"ALLOWED_ORIGINS":   "*",
	"DB_DRIVER":         "postgres",
	"DB_HOST":           "localhost",
	"DB_PORT":           "5432",
	"DB_USER":           "blocknotes",
	"DB_PASSWORD":       "blocknotes",
	"DB_NAME":           "blocknotes",
	"DB_SQLITE_PATH":    "blocknotes.db",
	"DB_MAX_IDLE_CONNS": 10,
	"DB_MAX_OPEN_CONNS": 100,
	"NATS_URL":          "",
	"FLUSH_DEBOUNCE_MS": 500,
	"LOG_LEVEL":         "info",
}

// Load reads configuration from the environment, merged over the optional
// config file. A missing file is not an error.
func Load(configFile string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to stat config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse configuration: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.FlushDebounceMS <= 0 {
		return fmt.Errorf("FLUSH_DEBOUNCE_MS must be positive, got %d", c.FlushDebounceMS)
	}
	return nil
}

func (c Config) FlushDebounce() time.Duration {
	return time.Duration(c.FlushDebounceMS) * time.Millisecond
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c Config) Development() bool {
	return c.AppEnv == "development"
}
