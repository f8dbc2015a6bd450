package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000"`

	// Identity provider
	JWKSURL string `env:"JWKS_URL"`

	// Storage
	Store       string `env:"STORE" envDefault:"postgres"` // postgres | memory
	DatabaseURL string `env:"DATABASE_URL"`
	TablePrefix string `env:"TABLE_PREFIX"`

	// Completion API
	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	CompletionModel   string `env:"COMPLETION_MODEL" envDefault:"meta-llama/llama-4-maverick:free"`

	// Optional YAML file overriding the built-in persona prompts
	PersonaFile string `env:"PERSONA_FILE"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if cfg.TablePrefix == "" {
		cfg.TablePrefix = tablePrefixFor(cfg.Environment)
	}

	return cfg, nil
}

// tablePrefixFor returns the table prefix based on environment
func tablePrefixFor(environment string) string {
	switch environment {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}
