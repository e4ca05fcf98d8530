package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// apiKeyFromEnv prefers LLM_API_KEY and falls back to GROQ_API_KEY.
func apiKeyFromEnv() string {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("GROQ_API_KEY")
}

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = apiKeyFromEnv()
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("CACHE_DIR")
	}
	if cfg.PromptsPath == "" {
		cfg.PromptsPath = os.Getenv("PROMPTS_FILE")
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = os.Getenv("OUTPUT_DIR")
	}
	if cfg.MaxTokens == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LLM_MAX_TOKENS"))); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	if cfg.Temperature == 0 {
		if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("LLM_TEMPERATURE")), 32); err == nil {
			cfg.Temperature = float32(f)
		}
	}
	if cfg.CacheMaxAge == 0 {
		if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.CacheMaxAge = d
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			if s == "1" || s == "true" || s == "yes" || s == "on" {
				*dst = true
			}
		}
	}
	setBool(&cfg.DryRun, "DRY_RUN")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.CacheOnly, "LLM_CACHE_ONLY")
	setBool(&cfg.AttachImages, "LLM_ATTACH_IMAGES")
}

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when they are set. It runs after the config file overlay so env beats file
// while flags stay highest.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := apiKeyFromEnv(); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("PROMPTS_FILE"); v != "" {
		cfg.PromptsPath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LLM_MAX_TOKENS"))); err == nil && n > 0 {
		cfg.MaxTokens = n
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("LLM_TEMPERATURE")), 32); err == nil {
		cfg.Temperature = float32(f)
	}
	if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.CacheMaxAge = d
		}
	}

	// Booleans override when env present and truthy/falsey
	setBool := func(dst *bool, envKey string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	setBool(&cfg.DryRun, "DRY_RUN")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
	setBool(&cfg.CacheOnly, "LLM_CACHE_ONLY")
	setBool(&cfg.AttachImages, "LLM_ATTACH_IMAGES")
}
