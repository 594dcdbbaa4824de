package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the configuration of the formwire command.
type Config struct {
	Env      string // local | production | testing
	LogLevel string
	Addr     string
	Metrics  bool

	// Forms configures the form managers registered in the root container.
	Forms FormsConfig
}

// FormsConfig configures the form managers.
type FormsConfig struct {
	// Required lists the fields that can not be left empty.
	Required []string
}

// Load reads .env (if present) and populates a Config from environment variables.
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// .env is optional
	_ = godotenv.Load(files...)

	return &Config{
		Env:      env("FORMWIRE_ENV", "local"),
		LogLevel: env("FORMWIRE_LOG_LEVEL", "info"),
		Addr:     env("FORMWIRE_ADDR", ":8000"),
		Metrics:  envBool("FORMWIRE_METRICS", true),
		Forms: FormsConfig{
			Required: envList("FORMWIRE_REQUIRED_FIELDS", []string{"email"}),
		},
	}
}

// IsProduction returns true when the command runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
