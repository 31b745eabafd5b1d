package engine

import (
	"context"
	"iter"
	"strings"
	"time"
)

// Echo answers with the prompt itself, one word per snapshot.
type Echo struct {
	// Delay is slept before each snapshot (0 = none).
	Delay time.Duration
}

func (Echo) Name() string     { return "echo" }
func (Echo) Available() error { return nil }

func (e Echo) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	words := strings.SplitAfter(prompt, " ")
	return Accumulate(ctx, func(ctx context.Context, emit func(string) bool) error {
		for _, w := range words {
			if err := sleepCtx(ctx, e.Delay); err != nil {
				return err
			}
			if !emit(w) {
				return nil
			}
		}
		return nil
	})
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
