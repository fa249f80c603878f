package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting of the chat service. Values come from
// the environment (optionally seeded by a .env file at startup).
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DB_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`

	// JWTSecret signs/verifies the realtime handshake token. Empty means
	// insecure development mode: the handshake trusts a user_id parameter.
	JWTSecret string `envconfig:"CHAT_JWT_SECRET"`

	// RunWorker starts the embedded queue worker alongside the API.
	RunWorker bool `envconfig:"RUN_WORKER" default:"true"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
