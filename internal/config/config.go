package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Env         string
	ListenAddr  string
	DatabaseURL string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	Temperature   float64
	MaxRetries    int
	CallTimeout   time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:           getenv("APP_ENV", "development"),
		ListenAddr:    getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:         getenv("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature:   getenvFloat("MODEL_TEMPERATURE", 0.4),
		MaxRetries:    getenvInt("MODEL_MAX_RETRIES", 2),
		CallTimeout:   time.Duration(getenvInt("MODEL_TIMEOUT_SECONDS", 60)) * time.Second,
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		var out float64
		if _, err := fmt.Sscanf(v, "%g", &out); err == nil {
			return out
		}
	}
	return def
}
