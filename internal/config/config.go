package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all service settings. Values come from the environment,
// with a best-effort .env load first.
type Config struct {
	ListenAddr   string
	DatabasePath string
	ProjectsDir  string

	Provider       string
	GeneratorModel string
	ReviewerModel  string

	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string

	MaxAttempts int
}

// Load reads configuration from .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     getenv("VIBEGRAPHER_ADDR", ":8080"),
		DatabasePath:   getenv("VIBEGRAPHER_DB", "vibegrapher.db"),
		ProjectsDir:    getenv("VIBEGRAPHER_PROJECTS_DIR", "media/projects"),
		Provider:       getenv("VIBEGRAPHER_PROVIDER", "openai"),
		GeneratorModel: getenv("VIBEGRAPHER_GENERATOR_MODEL", "gpt-5-mini"),
		ReviewerModel:  getenv("VIBEGRAPHER_REVIEWER_MODEL", "gpt-5-nano"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:      os.Getenv("GEMINI_API_KEY"),
		MaxAttempts:    3,
	}

	if raw := os.Getenv("VIBEGRAPHER_MAX_ATTEMPTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid VIBEGRAPHER_MAX_ATTEMPTS %q", raw)
		}
		cfg.MaxAttempts = n
	}

	return cfg, nil
}

// APIKey returns the key configured for the given provider.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIKey
	case "anthropic":
		return c.AnthropicKey
	case "gemini":
		return c.GeminiKey
	}
	return ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
