package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Weather provider
	WeatherAPIKey      string `env:"WEATHER_API_KEY"`
	WeatherBaseURL     string `env:"WEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5"`
	WeatherIconBaseURL string `env:"WEATHER_ICON_BASE_URL" envDefault:"https://openweathermap.org/img/wn"`

	// LLM
	LLMProvider string `env:"LLM_PROVIDER" envDefault:"cohere"` // "cohere" (OpenAI-compatible endpoint) or "openai"
	CohereKey   string `env:"COHERE_API_KEY"`
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	LLMModel    string `env:"LLM_MODEL"`    // empty selects the provider default
	LLMBaseURL  string `env:"LLM_BASE_URL"` // empty selects the provider default
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
