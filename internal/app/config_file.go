package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`

	LLM struct {
		BaseURL           string  `yaml:"base" json:"base"`
		Model             string  `yaml:"model" json:"model"`
		APIKey            string  `yaml:"key" json:"key"`
		Temperature       float32 `yaml:"temperature" json:"temperature"`
		MaxTokens         int     `yaml:"maxTokens" json:"maxTokens"`
		RequestsPerSecond float64 `yaml:"requestsPerSecond" json:"requestsPerSecond"`
		AttachImages      bool    `yaml:"attachImages" json:"attachImages"`
	} `yaml:"llm" json:"llm"`

	Report struct {
		Prompts    string   `yaml:"prompts" json:"prompts"`
		Labels     []string `yaml:"labels" json:"labels"`
		Disclaimer string   `yaml:"disclaimer" json:"disclaimer"`
		PairAll    bool     `yaml:"pairAll" json:"pairAll"`
		Markdown   bool     `yaml:"markdown" json:"markdown"`
	} `yaml:"report" json:"report"`

	DryRun  bool `yaml:"dryRun" json:"dryRun"`
	Verbose bool `yaml:"verbose" json:"verbose"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		MaxEntries  int           `yaml:"maxEntries" json:"maxEntries"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are unset or still at their flag default. Explicit flags are preserved.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if (cfg.InputPath == "" || cfg.InputPath == DefaultInputPath) && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if (cfg.OutputDir == "" || cfg.OutputDir == DefaultOutputDir) && fc.Output != "" {
		cfg.OutputDir = fc.Output
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if (cfg.LLMModel == "" || cfg.LLMModel == DefaultModel) && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if (cfg.Temperature == 0 || cfg.Temperature == DefaultTemperature) && fc.LLM.Temperature > 0 {
		cfg.Temperature = fc.LLM.Temperature
	}
	if (cfg.MaxTokens == 0 || cfg.MaxTokens == DefaultMaxTokens) && fc.LLM.MaxTokens > 0 {
		cfg.MaxTokens = fc.LLM.MaxTokens
	}
	if cfg.RequestsPerSecond == 0 && fc.LLM.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = fc.LLM.RequestsPerSecond
	}
	if !cfg.AttachImages && fc.LLM.AttachImages {
		cfg.AttachImages = true
	}

	if cfg.PromptsPath == "" && fc.Report.Prompts != "" {
		cfg.PromptsPath = fc.Report.Prompts
	}
	if len(cfg.Labels) == 0 && len(fc.Report.Labels) > 0 {
		cfg.Labels = append([]string{}, fc.Report.Labels...)
	}
	if (cfg.Disclaimer == "" || cfg.Disclaimer == DefaultDisclaimer) && fc.Report.Disclaimer != "" {
		cfg.Disclaimer = fc.Report.Disclaimer
	}
	if !cfg.PairAll && fc.Report.PairAll {
		cfg.PairAll = true
	}
	if !cfg.Markdown && fc.Report.Markdown {
		cfg.Markdown = true
	}
	if !cfg.DryRun && fc.DryRun {
		cfg.DryRun = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}

	if (cfg.CacheDir == "" || cfg.CacheDir == DefaultCacheDir) && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if cfg.CacheMaxEntries == 0 && fc.Cache.MaxEntries > 0 {
		cfg.CacheMaxEntries = fc.Cache.MaxEntries
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
}

// ValidateConfig performs minimal validation of required settings.
// For dry-run, LLM settings may be omitted.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("config: output directory is required")
	}
	if !cfg.DryRun && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if cfg.MaxTokens < 0 || cfg.CacheMaxEntries < 0 || cfg.RequestsPerSecond < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		return errors.New("config: temperature must be within 0..2")
	}
	for _, l := range cfg.Labels {
		if strings.TrimSpace(l) == "" {
			return errors.New("config: empty section label")
		}
	}
	return nil
}
