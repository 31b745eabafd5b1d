//go:build !llama

package engine

// No-CGO stub for the llama engine, compiled when the 'llama' build tag is
// not set. Default builds stay CGO-free; the real engine lives in llama.go.

import (
	"context"
	"iter"
)

var llamaBuilt = false

const llamaMissing = "llama support not built (missing 'llama' build tag)"

// Llama is a stub that refuses to generate without the 'llama' build tag.
type Llama struct {
	modelPath string
}

func NewLlama(modelPath string, ctxSize, threads int, params Params) *Llama {
	return &Llama{modelPath: modelPath}
}

func (l *Llama) Name() string { return "llama" }

func (l *Llama) Available() error { return ErrDependencyUnavailable(llamaMissing) }

func (l *Llama) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield("", ErrDependencyUnavailable(llamaMissing))
	}
}

func (l *Llama) Close() error { return nil }
