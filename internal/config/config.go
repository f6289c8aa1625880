package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"net/url"
	"regexp"
	"time"
)

const redactedValue = "xxxxx"

var dsnPasswordPattern = regexp.MustCompile(`(password\s*=\s*)('[^']*'|\S+)`)

// Config represents the application configuration structure
type Config struct {
	Environment string `default:"development"`

	APIBaseURL  string        `default:"https://notes-backend-teal.vercel.app/api" split_words:"true"`
	HTTPTimeout time.Duration `default:"30s" split_words:"true"`

	SessionDriver    string `default:"file" split_words:"true"`
	SessionFile      string `split_words:"true"`
	SessionNamespace string `default:"default" split_words:"true"`
	RedisURL         string `split_words:"true"`
	RedisPrefix      string `default:"tenote:session:" split_words:"true"`
	PostgresDSN      string `split_words:"true"`

	WatchInterval time.Duration `default:"5m" split_words:"true"`
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return config.Environment == "production"
}

// Redacted returns a copy of the configuration with the credentials in connection strings masked
func (config *Config) Redacted() Config {
	cpy := *config
	cpy.RedisURL = redactConnectionString(cpy.RedisURL)
	cpy.PostgresDSN = redactConnectionString(cpy.PostgresDSN)
	return cpy
}

// redactConnectionString masks the password of a URL or of a 'key=value' DSN
func redactConnectionString(raw string) string {
	if raw == "" {
		return raw
	}
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" && parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			return parsed.Redacted()
		}
		return raw
	}
	return dsnPasswordPattern.ReplaceAllString(raw, "${1}"+redactedValue)
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("tenote", config); err != nil {
		return nil, err
	}
	return config, nil
}
