package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration, loaded from the
// environment (optionally seeded from a .env file).
type Config struct {
	Port              int    `mapstructure:"port"`
	LogLevel          string `mapstructure:"log_level"`
	DatabaseURL       string `mapstructure:"database_url"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	GeminiModel       string `mapstructure:"gemini_model"`
	UnsplashAccessKey string `mapstructure:"unsplash_access_key"`
	GenerationBackend string `mapstructure:"generation_backend"`
	LocalLLMURL       string `mapstructure:"local_llm_url"`
	LocalLLMModel     string `mapstructure:"local_llm_model"`
	CORSOrigins       string `mapstructure:"cors_origins"`
}

// Load reads configuration. A missing .env file is fine; a missing
// DATABASE_URL is not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetDefault("port", 8080)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("generation_backend", "gemini")
	viper.SetDefault("cors_origins", "http://localhost:3000")

	viper.AutomaticEnv()
	for key, env := range map[string]string{
		"port":                "PORT",
		"log_level":           "LOG_LEVEL",
		"database_url":        "DATABASE_URL",
		"gemini_api_key":      "GEMINI_API_KEY",
		"gemini_model":        "GEMINI_MODEL",
		"unsplash_access_key": "UNSPLASH_ACCESS_KEY",
		"generation_backend":  "GENERATION_BACKEND",
		"local_llm_url":       "LOCAL_LLM_URL",
		"local_llm_model":     "LOCAL_LLM_MODEL",
		"cors_origins":        "CORS_ORIGINS",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GenerationBackend == "gemini" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini backend")
	}

	return &cfg, nil
}
