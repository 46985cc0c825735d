package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	Port      string
	OTel      OTelConfig
	LLM       LLMConfig
	Knowledge KnowledgeConfig
	Cache     CacheConfig
	Analysis  AnalysisConfig
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type LLMConfig struct {
	Provider  string // "openai" or "anthropic"
	APIKey    string
	BaseURL   string // Optional: for custom endpoints
	Model     string
	MaxTokens int
}

type KnowledgeConfig struct {
	SourceURL    string
	FetchTimeout time.Duration
	CacheTTL     time.Duration
}

type CacheConfig struct {
	RedisURL string // empty disables the snapshot cache
}

type AnalysisConfig struct {
	MergeMode        string // "union" or "model_priority"; validated by engine.New
	MaxDocumentChars int
	MaxTokens        int
	BackendTimeout   time.Duration
	DSARTimelineRule bool
}

// Load loads configuration from environment variables. In development it
// loads from a .env file first. There are no hard-required variables: with
// an empty environment the engine runs rule-only on the frozen snapshot.
func Load() (Config, error) {
	if getEnv("ENGINE_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	cfg := Config{
		Env:  getEnv("ENGINE_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "complyscan-engine"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		LLM: LLMConfig{
			Provider:  getEnv("LLM_PROVIDER", "openai"),
			APIKey:    getEnv("LLM_API_KEY", ""),
			BaseURL:   getEnv("LLM_BASE_URL", ""),
			Model:     getEnv("LLM_MODEL", ""),
			MaxTokens: getEnvInt("LLM_MAX_TOKENS", 1024),
		},
		Knowledge: KnowledgeConfig{
			SourceURL:    getEnv("KNOWLEDGE_SOURCE_URL", "https://gdpr-info.eu/"),
			FetchTimeout: getEnvDuration("KNOWLEDGE_FETCH_TIMEOUT", 30*time.Second),
			CacheTTL:     getEnvDuration("KNOWLEDGE_CACHE_TTL", 6*time.Hour),
		},
		Cache: CacheConfig{
			RedisURL: getEnv("REDIS_URL", ""),
		},
		Analysis: AnalysisConfig{
			MergeMode:        getEnv("MERGE_MODE", "union"),
			MaxDocumentChars: getEnvInt("MAX_DOCUMENT_CHARS", 12000),
			MaxTokens:        getEnvInt("LLM_MAX_TOKENS", 1024),
			BackendTimeout:   getEnvDuration("BACKEND_TIMEOUT", 60*time.Second),
		},
	}

	// Rule-only deployments get the extra DSAR timeline check by default;
	// model-backed ones leave it to the model unless explicitly enabled.
	cfg.Analysis.DSARTimelineRule = getEnvBool("DSAR_TIMELINE_RULE", !cfg.LLM.Enabled())

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c CacheConfig) Enabled() bool {
	return c.RedisURL != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
