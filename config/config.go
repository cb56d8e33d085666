package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/matt-dreyer/Tigo-MCP-server/cache"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// ErrorCode defines error types for configuration loading
type ErrorCode string

const (
	InvalidConfig ErrorCode = "InvalidConfig"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// Config holds the runtime settings, sourced from the environment and
// an optional .env file in the working directory.
type Config struct {
	Username    string `validate:"required"`
	Password    string `validate:"required"`
	APIURL      string `validate:"omitempty,url"`
	SystemID    int    `validate:"gte=0"`
	HTTPTimeout time.Duration
	CacheDir    string
	CacheTTL    time.Duration
}

// envNames maps struct fields to the variables users actually set.
var envNames = map[string]string{
	"Username":    "TIGO_USERNAME",
	"Password":    "TIGO_PASSWORD",
	"APIURL":      "TIGO_API_URL",
	"SystemID":    "TIGO_SYSTEM_ID",
	"HTTPTimeout": "TIGO_HTTP_TIMEOUT",
	"CacheDir":    "TIGO_CACHE_DIR",
	"CacheTTL":    "TIGO_CACHE_TTL",
}

var validate = validator.New()

// Load reads the configuration. A .env file in the working directory
// is honored when present; variables already set in the environment
// win over the file.
func Load() (*Config, error) {
	// Missing .env is fine, the environment alone may be complete
	_ = godotenv.Load()

	httpTimeout, err := durationEnv("TIGO_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationEnv("TIGO_CACHE_TTL", time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Username:    os.Getenv("TIGO_USERNAME"),
		Password:    os.Getenv("TIGO_PASSWORD"),
		APIURL:      os.Getenv("TIGO_API_URL"),
		HTTPTimeout: httpTimeout,
		CacheDir:    os.Getenv("TIGO_CACHE_DIR"),
		CacheTTL:    cacheTTL,
	}

	if raw := os.Getenv("TIGO_SYSTEM_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, failure.New(InvalidConfig,
				failure.Message("TIGO_SYSTEM_ID must be an integer"),
				failure.Context{"value": raw},
			)
		}
		cfg.SystemID = id
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
				if name, ok := envNames[fe.Field()]; ok {
					return name
				}
				return fe.Field()
			})
			return nil, failure.New(InvalidConfig,
				failure.Message("Missing or invalid configuration: "+strings.Join(fields, ", ")),
			)
		}
		return nil, failure.Wrap(err)
	}

	return cfg, nil
}

// ClientConfig maps the loaded settings onto a Tigo client configuration.
func (c *Config) ClientConfig() tigo.Config {
	return tigo.Config{
		Username: c.Username,
		Password: c.Password,
		BaseURL:  c.APIURL,
		Timeout:  c.HTTPTimeout,
	}
}

// ApplyCache points the file cache at the configured directory and
// TTL. Must run before any client is constructed.
func (c *Config) ApplyCache() {
	if c.CacheDir != "" {
		cache.DefaultDir = c.CacheDir
	}
	if c.CacheTTL > 0 {
		cache.DefaultTTL = c.CacheTTL
	}
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, failure.New(InvalidConfig,
			failure.Message(name+" must be a duration like 30s or 5m"),
			failure.Context{"value": raw},
		)
	}
	return d, nil
}
