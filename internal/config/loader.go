package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults when the corresponding fields are unset.
const (
	DefaultAddr     = ":8080"
	DefaultEngine   = "echo"
	DefaultCtxSize  = 2048
	DefaultThreads  = 4
	DefaultLogLevel = "info"
)

// Config holds runtime parameters for the bridge, its engine and the HTTP surface.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
	// Engine selects the generation backend:
	// echo|scripted|llama|llama-server|openai|anthropic.
	Engine string `json:"engine" yaml:"engine" toml:"engine"`
	// Model is a model name (openai/anthropic), a GGUF path, or a GGUF file
	// name inside ModelsDir (llama).
	Model     string `json:"model" yaml:"model" toml:"model"`
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	CtxSize   int    `json:"ctx_size" yaml:"ctx_size" toml:"ctx_size"`
	Threads   int    `json:"threads" yaml:"threads" toml:"threads"`
	BaseURL   string `json:"base_url" yaml:"base_url" toml:"base_url"`
	APIKey    string `json:"api_key" yaml:"api_key" toml:"api_key"`

	MaxTokens   int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	Temperature float64  `json:"temperature" yaml:"temperature" toml:"temperature"`
	TopP        float64  `json:"top_p" yaml:"top_p" toml:"top_p"`
	TopK        int      `json:"top_k" yaml:"top_k" toml:"top_k"`
	Stop        []string `json:"stop" yaml:"stop" toml:"stop"`
	Seed        int      `json:"seed" yaml:"seed" toml:"seed"`

	RepeatPenalty float64 `json:"repeat_penalty" yaml:"repeat_penalty" toml:"repeat_penalty"`

	// Script is replayed by the scripted engine.
	Script      []string `json:"script" yaml:"script" toml:"script"`
	StepDelayMS int      `json:"step_delay_ms" yaml:"step_delay_ms" toml:"step_delay_ms"`

	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	// MaxBodyBytes caps JSON request bodies (0 = 1 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// RequestTimeoutSeconds bounds /v1/respond and /v1/stream (0 = none).
	RequestTimeoutSeconds int64 `json:"request_timeout_seconds" yaml:"request_timeout_seconds" toml:"request_timeout_seconds"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// LoadOrDefault loads path when non-empty and applies defaults either way.
func LoadOrDefault(path string) (Config, error) {
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if c.CtxSize <= 0 {
		c.CtxSize = DefaultCtxSize
	}
	if c.Threads <= 0 {
		c.Threads = DefaultThreads
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
