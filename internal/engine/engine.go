package engine

import (
	"context"
	"iter"
	"strings"
)

// Engine produces cumulative text snapshots for a prompt.
type Engine interface {
	// Name identifies the engine in logs and status output.
	Name() string
	// Available reports nil when the engine can serve requests. It must be
	// cheap and free of side effects.
	Available() error
	// Snapshots starts a new generation for prompt. Implementations must stop
	// producing when ctx is canceled or the consumer stops iterating.
	Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error]
}

// Params captures generation parameters shared by the backends.
type Params struct {
	Temperature   float32
	TopP          float32
	TopK          int
	MaxTokens     int
	Stop          []string
	Seed          int
	RepeatPenalty float32
}

// Producer pushes generated pieces through emit until generation ends.
// emit returns false when the consumer is no longer interested; the producer
// should then return promptly.
type Producer func(ctx context.Context, emit func(piece string) bool) error

// Accumulate adapts a delta-producing backend into a cumulative snapshot
// sequence. Empty pieces are dropped. A producer error is yielded only if the
// consumer was still iterating.
func Accumulate(ctx context.Context, produce Producer) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		var b strings.Builder
		stopped := false
		err := produce(ctx, func(piece string) bool {
			if stopped {
				return false
			}
			if piece == "" {
				return true
			}
			b.WriteString(piece)
			if !yield(b.String(), nil) {
				stopped = true
				cancel()
				return false
			}
			return true
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}
