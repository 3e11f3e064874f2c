// internal/config/config.go
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs beyond command-line flags.
// The upstream credential stays server-side; the browser only ever talks
// to the proxy endpoint.
type Config struct {
	Env            string
	UpstreamURL    string
	APIKey         string
	Model          string
	AllowedOrigins []string
}

const (
	defaultUpstreamURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultModel       = "anthropic/claude-3.5-sonnet"
)

// Load reads configuration from the environment, with an optional .env file
// for local development. A missing .env is not an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:            os.Getenv("ENV"),
		UpstreamURL:    getEnv("LLM_API_URL", defaultUpstreamURL),
		APIKey:         os.Getenv("LLM_API_KEY"),
		Model:          getEnv("LLM_MODEL", defaultModel),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
