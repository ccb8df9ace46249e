package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/v3"

	"outfit-advisor/internal/advisor"
	"outfit-advisor/internal/config"
	"outfit-advisor/internal/llm"
	"outfit-advisor/internal/logger"
	"outfit-advisor/internal/weather"
	"outfit-advisor/internal/web"
)

// Deps bundles the runtime dependencies of the advisor service.
type Deps struct {
	Config   config.Config
	Log      *slog.Logger
	Weather  weather.Client
	LLM      llm.Client
	Flow     *advisor.Flow
	Renderer *web.Renderer
}

// Build loads .env (if present), config, and shared components.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	llmClient, err := buildLLM(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	return Assemble(cfg, log, buildWeather(cfg, log), llmClient)
}

// Assemble wires the flow and renderer around already built clients.
func Assemble(cfg config.Config, log *slog.Logger, w weather.Client, l llm.Client) (Deps, error) {
	renderer, err := web.NewRenderer(Sidebar(cfg.LLMProvider))
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize renderer: %w", err)
	}
	return Deps{
		Config:   cfg,
		Log:      log,
		Weather:  w,
		LLM:      l,
		Flow:     advisor.NewFlow(w, l, cfg.WeatherIconBaseURL, log),
		Renderer: renderer,
	}, nil
}

// Sidebar is the attribution line shown on the page.
func Sidebar(provider string) string {
	name := "Cohere"
	if provider == llm.ProviderOpenAI {
		name = "OpenAI"
	}
	return "Powered by OpenWeatherMap & " + name
}

func buildWeather(cfg config.Config, log *slog.Logger) weather.Client {
	if cfg.WeatherAPIKey == "" {
		log.Warn("WEATHER_API_KEY is not set; lookups will fail until it is")
	}
	log.Info("using OpenWeatherMap", "base_url", cfg.WeatherBaseURL)
	return weather.NewOpenWeatherMap(cfg.WeatherAPIKey, cfg.WeatherBaseURL, nil)
}

// buildLLM picks the chat provider. Keys are not required here; a missing key
// fails the first suggestion lookup with the provider's auth error.
func buildLLM(cfg config.Config, log *slog.Logger) (*llm.OpenAIClient, error) {
	var key, baseURL, model string
	switch cfg.LLMProvider {
	case llm.ProviderCohere:
		key, baseURL, model = cfg.CohereKey, llm.CohereBaseURL, llm.DefaultCohereModel
	case llm.ProviderOpenAI:
		key, baseURL, model = cfg.OpenAIKey, "", string(llm.DefaultOpenAIModel)
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: cohere, openai)", cfg.LLMProvider)
	}
	if cfg.LLMBaseURL != "" {
		baseURL = cfg.LLMBaseURL
	}
	if cfg.LLMModel != "" {
		model = cfg.LLMModel
	}
	if key == "" {
		log.Warn("LLM API key is not set; suggestions will fail until it is", "provider", cfg.LLMProvider)
	}
	client := llm.NewOpenAIClient(key, baseURL, openai.ChatModel(model), nil)
	log.Info("using chat completion client", "provider", cfg.LLMProvider, "model", client.Model())
	return client, nil
}
