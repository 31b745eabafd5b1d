//go:build llama

package engine

import (
	"context"
	"errors"
	"iter"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"fmbridge/internal/common/fsutil"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// Llama runs a GGUF model in-process. The model is loaded on first use and
// shared by all generations; a single-slot semaphore keeps Predict calls from
// overlapping because the token callback is per model.
type Llama struct {
	modelPath string
	ctxSize   int
	threads   int
	params    Params

	sem   chan struct{}
	model *llama.LLama
}

// NewLlama returns a llama.cpp engine for the model at modelPath.
func NewLlama(modelPath string, ctxSize, threads int, params Params) *Llama {
	return &Llama{
		modelPath: modelPath,
		ctxSize:   ctxSize,
		threads:   threads,
		params:    params,
		sem:       make(chan struct{}, 1),
	}
}

func (l *Llama) Name() string { return "llama" }

func (l *Llama) Available() error {
	if strings.TrimSpace(l.modelPath) == "" {
		return ErrDependencyUnavailable("model path is empty")
	}
	if !fsutil.PathExists(l.modelPath) {
		return ErrDependencyUnavailable("model file not found: " + l.modelPath)
	}
	return nil
}

func (l *Llama) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return Accumulate(ctx, func(ctx context.Context, emit func(string) bool) error {
		select {
		case l.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		defer func() { <-l.sem }()
		if err := l.load(); err != nil {
			return err
		}
		// Bridge token streaming to emit and respect cancellation
		l.model.SetTokenCallback(func(tok string) bool {
			select {
			case <-ctx.Done():
				return false
			default:
			}
			return emit(tok)
		})
		_, err := l.model.Predict(prompt, mapParamsToPredictOptions(l.params, l.threads)...)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	})
}

// load initializes the model once; callers hold sem.
func (l *Llama) load() error {
	if l.model != nil {
		return nil
	}
	if err := l.Available(); err != nil {
		return err
	}
	m, err := llama.New(l.modelPath, llama.SetContext(l.ctxSize))
	if err != nil {
		return err
	}
	l.model = m
	return nil
}

// Close frees the loaded model.
func (l *Llama) Close() error {
	select {
	case l.sem <- struct{}{}:
	default:
		return errors.New("llama: close while generating")
	}
	defer func() { <-l.sem }()
	if l.model != nil {
		l.model.Free()
		l.model = nil
	}
	return nil
}

// helpers
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
func zn(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// mapParamsToPredictOptions converts engine params into go-llama.cpp options
func mapParamsToPredictOptions(params Params, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, params.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopP(zf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(zn(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(zf(params.Temperature, llama.DefaultOptions.Temperature)),
		llama.SetPenalty(zf(params.RepeatPenalty, llama.DefaultOptions.Penalty)),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	if len(params.Stop) > 0 {
		po = append(po, llama.SetStopWords(params.Stop...))
	}
	return po
}
