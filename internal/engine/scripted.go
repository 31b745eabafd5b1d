package engine

import (
	"context"
	"iter"
	"time"
)

// Scripted replays Steps as cumulative snapshots regardless of the prompt.
// Steps are yielded verbatim, so a script can also exercise engines that
// violate the extension contract.
type Scripted struct {
	Steps []string
	// Delay is slept before each step.
	Delay time.Duration
	// Err, when set, is yielded after the last step.
	Err error
}

func (s *Scripted) Name() string     { return "scripted" }
func (s *Scripted) Available() error { return nil }

func (s *Scripted) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	steps := append([]string(nil), s.Steps...)
	delay, failure := s.Delay, s.Err
	return func(yield func(string, error) bool) {
		for _, snap := range steps {
			if err := sleepCtx(ctx, delay); err != nil {
				yield("", err)
				return
			}
			if !yield(snap, nil) {
				return
			}
		}
		if failure != nil {
			yield("", failure)
		}
	}
}
