package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Env              string
	LogLevel         string
	AllowedOrigin    string
	SegmentCacheSize int
	LLM              LLMConfig
}

type LLMConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	RPS         float64
	Burst       int
	MaxAttempts int
	CacheSize   int
	CacheTTL    time.Duration
}

// Load reads .env, the process flags and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(os.Args[1:])
}

// LoadFrom is Load without .env, parsing args instead of os.Args.
func LoadFrom(args []string) (*Config, error) {
	fs := flag.NewFlagSet("api", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	cfg := &Config{
		Port:             *port,
		Env:              env,
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		AllowedOrigin:    strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGIN")),
		SegmentCacheSize: envInt("SEGMENT_CACHE_SIZE", 128),
		LLM:              loadLLMConfig(),
	}
	if strings.EqualFold(env, "local") {
		applyLocalDefaults(cfg)
	}
	return cfg, nil
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(firstNonEmpty(strings.TrimSpace(os.Getenv("LLM_PROVIDER")), "gemini"))
	return LLMConfig{
		Provider:    provider,
		Model:       strings.TrimSpace(os.Getenv("LLM_MODEL")),
		APIKey:      resolveAPIKey(provider),
		BaseURL:     strings.TrimSpace(os.Getenv("LLM_BASE_URL")),
		RPS:         envFloat("LLM_RPS", 1),
		Burst:       envInt("LLM_BURST", 2),
		MaxAttempts: envInt("LLM_MAX_ATTEMPTS", 1),
		CacheSize:   envInt("LLM_CACHE_SIZE", 64),
		CacheTTL:    envDuration("LLM_CACHE_TTL", 10*time.Minute),
	}
}

func resolveAPIKey(provider string) string {
	specific := ""
	switch provider {
	case "gemini":
		specific = os.Getenv("GEMINI_API_KEY")
	case "openai":
		specific = os.Getenv("OPENAI_API_KEY")
	case "groq":
		specific = os.Getenv("GROQ_API_KEY")
	}
	return strings.TrimSpace(firstNonEmpty(os.Getenv("LLM_API_KEY"), specific))
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return f
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
