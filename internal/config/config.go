// Package config loads process configuration from an optional YAML file with
// environment variable overrides. Everything that used to be ambient state (a
// database handle, an API key) is explicit here and injected at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full process configuration.
type Config struct {
	Port string `yaml:"port"`

	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Storage    StorageConfig    `yaml:"storage"`

	// PDFServiceURL is the external PDF text-extraction service.
	PDFServiceURL string `yaml:"pdf_service_url"`

	// FetchTimeout bounds document URL downloads.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// WatchDir, when set, is monitored for dropped documents to auto-ingest.
	WatchDir string `yaml:"watch_dir"`
	// WatchOwner owns sessions created by the watcher.
	WatchOwner string `yaml:"watch_owner"`

	// AuthTokens maps bearer tokens to user ids. Stands in for the external
	// OAuth/JWT collaborator in local deployments.
	AuthTokens map[string]string `yaml:"auth_tokens"`

	// SamplePath is the document summarized when /summarize gets no upload.
	SamplePath string `yaml:"sample_path"`

	// TopK is how many passage matches are kept per session.
	TopK int `yaml:"top_k"`
}

// OpenRouterConfig configures the LLM endpoint.
type OpenRouterConfig struct {
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// StorageConfig selects and configures the session store.
type StorageConfig struct {
	Backend string `yaml:"backend"` // "memory" or "sqlite"
	Path    string `yaml:"path"`    // data directory for sqlite
}

// Load builds the config: defaults, then the YAML file named by
// DOCUMIND_CONFIG (if any), then env overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Port:          "5000",
		PDFServiceURL: "http://localhost:8081",
		FetchTimeout:  30 * time.Second,
		WatchOwner:    "local",
		SamplePath:    "./uploads/sample.txt",
		TopK:          5,
		OpenRouter: OpenRouterConfig{
			BaseURL:   "https://openrouter.ai/api/v1",
			Model:     "microsoft/mai-ds-r1:free",
			MaxTokens: 1024,
			Timeout:   120 * time.Second,
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "./data",
		},
	}

	if path := os.Getenv("DOCUMIND_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Port, "PORT")
	setString(&cfg.Port, "DOCUMIND_PORT")
	setString(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.BaseURL, "DOCUMIND_OPENROUTER_URL")
	setString(&cfg.OpenRouter.Model, "DOCUMIND_MODEL")
	setString(&cfg.PDFServiceURL, "DOCUMIND_PDF_SERVICE_URL")
	setString(&cfg.Storage.Backend, "DOCUMIND_STORAGE_BACKEND")
	setString(&cfg.Storage.Path, "DOCUMIND_STORAGE_PATH")
	setString(&cfg.WatchDir, "DOCUMIND_WATCH_DIR")
	setString(&cfg.WatchOwner, "DOCUMIND_WATCH_OWNER")
	setString(&cfg.SamplePath, "DOCUMIND_SAMPLE_PATH")
	setInt(&cfg.TopK, "DOCUMIND_TOP_K")
	setInt(&cfg.OpenRouter.MaxTokens, "DOCUMIND_MAX_TOKENS")
	setDuration(&cfg.FetchTimeout, "DOCUMIND_FETCH_TIMEOUT")
	setDuration(&cfg.OpenRouter.Timeout, "DOCUMIND_LLM_TIMEOUT")
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
