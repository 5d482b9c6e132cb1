package config

import (
	"os"
	"strings"
)

// applyLocalDefaults lets a bare checkout run without credentials: with no
// provider chosen and no key present the fake LLM answers every prompt.
func applyLocalDefaults(cfg *Config) {
	if strings.TrimSpace(os.Getenv("LLM_PROVIDER")) == "" && cfg.LLM.APIKey == "" {
		cfg.LLM.Provider = "fake"
	}
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, "debug")
	cfg.AllowedOrigin = firstNonEmpty(cfg.AllowedOrigin, "http://localhost:3000")
}
