package engine

import (
	"os"
	"time"

	"fmbridge/internal/config"
	"fmbridge/internal/registry"
)

// lookupEnv is swapped in tests.
var lookupEnv = os.Getenv

// LlamaBuilt reports whether this binary includes the llama.cpp engine.
func LlamaBuilt() bool { return llamaBuilt }

// ParamsFromConfig maps config sampling fields to engine params.
func ParamsFromConfig(cfg config.Config) Params {
	return Params{
		Temperature: float32(cfg.Temperature),
		TopP:        float32(cfg.TopP),
		TopK:        cfg.TopK,
		MaxTokens:   cfg.MaxTokens,
		Stop:        cfg.Stop,
		Seed:        cfg.Seed,

		RepeatPenalty: float32(cfg.RepeatPenalty),
	}
}

// FromConfig builds the engine selected by cfg.Engine.
func FromConfig(cfg config.Config) (Engine, error) {
	delay := time.Duration(cfg.StepDelayMS) * time.Millisecond
	params := ParamsFromConfig(cfg)
	switch cfg.Engine {
	case "", "echo":
		return Echo{Delay: delay}, nil
	case "scripted":
		return &Scripted{Steps: cfg.Script, Delay: delay}, nil
	case "llama":
		path, err := registry.ResolveModel(cfg.ModelsDir, cfg.Model)
		if err != nil {
			return nil, err
		}
		return NewLlama(path, cfg.CtxSize, cfg.Threads, params), nil
	case "llama-server":
		return NewLlamaServer(cfg.BaseURL, cfg.APIKey, 0, params), nil
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey, cfg.BaseURL, params), nil
	case "anthropic":
		return NewAnthropic(cfg.Model, cfg.APIKey, cfg.BaseURL, params), nil
	default:
		return nil, unknownEngineError{name: cfg.Engine}
	}
}
