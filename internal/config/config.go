package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/kitbuilder587/docsmith/internal/domain"
)

var (
	ErrMissingToken    = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrMissingDB       = errors.New("DATABASE_URL is required")
	ErrInvalidProvider = errors.New("unknown LLM_PROVIDER")
	ErrInvalidPreset   = errors.New("invalid default preset")
)

type Config struct {
	Telegram  TelegramConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Search    SearchConfig
	Templates TemplatesConfig
	Log       LogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig

	// именованный пресет плюс точечные переопределения бюджета из окружения
	DefaultPreset domain.Preset
}

type TelegramConfig struct {
	Token string
}

type DatabaseConfig struct {
	URL string
}

type LLMConfig struct {
	Provider    string
	Temperature float64
	MaxTokens   int

	// токен-бакет на каждого вендора, RPS <= 0 выключает
	RPS   float64
	Burst int

	OpenAI    VendorConfig
	Anthropic VendorConfig
	Gemini    VendorConfig
}

// VendorConfig - у всех трех вендоров одинаковая тройка настроек
type VendorConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type SearchConfig struct {
	Enabled  bool
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration
}

type TemplatesConfig struct {
	Path string
}

type LogConfig struct {
	Level string
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type MetricsConfig struct {
	Addr string
}

func Load() (*Config, error) {
	cfg := &Config{
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		LLM: LLMConfig{
			Provider:    getEnvOrDefault("LLM_PROVIDER", "mock"),
			Temperature: getEnvFloatOrDefault("LLM_TEMPERATURE", 0.7),
			MaxTokens:   getEnvIntOrDefault("LLM_MAX_TOKENS", 2048),
			RPS:         getEnvFloatOrDefault("LLM_RPS", 1),
			Burst:       getEnvIntOrDefault("LLM_BURST", 3),
			OpenAI: VendorConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4-turbo"),
				BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			},
			Anthropic: VendorConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   getEnvOrDefault("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
				BaseURL: getEnvOrDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1"),
			},
			Gemini: VendorConfig{
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				Model:   getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
				BaseURL: getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			},
		},
		Search: SearchConfig{
			Enabled:  getEnvBoolOrDefault("SEARCH_ENABLED", false),
			APIKey:   os.Getenv("GOOGLE_SEARCH_API_KEY"),
			EngineID: os.Getenv("GOOGLE_SEARCH_ENGINE_ID"),
			BaseURL:  getEnvOrDefault("GOOGLE_SEARCH_BASE_URL", "https://www.googleapis.com/customsearch/v1"),
			Timeout:  time.Duration(getEnvIntOrDefault("SEARCH_TIMEOUT_SEC", 30)) * time.Second,
		},
		Templates: TemplatesConfig{
			Path: os.Getenv("TEMPLATES_FILE"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", 10),
		},
		Metrics: MetricsConfig{
			Addr: getEnvOrDefault("METRICS_ADDR", ":9090"),
		},
	}

	preset, err := domain.PresetFor(domain.PresetType(getEnvOrDefault("DEFAULT_PRESET", "standard")))
	if err != nil {
		return nil, ErrInvalidPreset
	}
	if v := getEnvIntOrDefault("MAX_ITERATIONS", 0); v > 0 {
		preset.MaxIterations = v
	}
	if v := getEnvFloatOrDefault("QUALITY_THRESHOLD", 0); v > 0 {
		preset.QualityThreshold = v
	}
	if v := getEnvIntOrDefault("TIMEOUT_SECONDS", 0); v > 0 {
		preset.TimeoutSeconds = v
	}
	cfg.DefaultPreset = preset

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.Database.URL == "" {
		return ErrMissingDB
	}
	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini", "mock":
	default:
		return ErrInvalidProvider
	}
	// переопределения из окружения могли сломать бюджет пресета
	return c.DefaultPreset.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
