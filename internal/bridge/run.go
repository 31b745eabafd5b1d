package bridge

import (
	"context"
	"fmt"
	"strings"

	"fmbridge/internal/delta"
)

// run is the background task of one operation. It pulls snapshots from the
// engine, delivers non-empty deltas, then exactly one terminal callback,
// unless cancellation is observed first, in which case it stops silently.
// Done is closed on every exit path.
func (b *Bridge) run(ctx context.Context, st *modeState, op *Operation, prompt string, ud UserData, cb Callbacks) {
	outcome := OutcomeCancelled
	var ex delta.Extractor
	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeFailed
			b.log.Error().Str("mode", st.mode.String()).Str("op", op.id).Str("panic", fmt.Sprint(r)).Msg("callback panicked")
		}
		if ex.Resets() > 0 {
			b.log.Warn().Str("op", op.id).Int("resets", ex.Resets()).Msg("engine snapshot did not extend its predecessor")
		}
		b.finish(st, op, outcome)
	}()

	for snap, err := range b.engine.Snapshots(ctx, prompt) {
		if op.Cancelled() {
			return
		}
		if err != nil {
			b.deliver(st, ex.Flush(), ud, cb)
			if op.Cancelled() {
				return
			}
			outcome = OutcomeFailed
			gerr := generationError{cause: err}
			b.log.Info().Str("mode", st.mode.String()).Str("op", op.id).Err(err).Msg("generation failed")
			cb.error(strings.ToValidUTF8(gerr.Error(), "\uFFFD"), ud)
			return
		}
		b.deliver(st, ex.Push(snap), ud, cb)
	}
	if op.Cancelled() {
		return
	}
	b.deliver(st, ex.Flush(), ud, cb)
	if op.Cancelled() {
		return
	}
	outcome = OutcomeCompleted
	cb.done(ud)
}

func (b *Bridge) deliver(st *modeState, chunk string, ud UserData, cb Callbacks) {
	if chunk == "" {
		return
	}
	chunksTotal.WithLabelValues(st.mode.String()).Inc()
	cb.chunk(chunk, ud)
}

// finish records the outcome, clears the slot if op still owns it and
// releases anyone waiting on Done.
func (b *Bridge) finish(st *modeState, op *Operation, outcome Outcome) {
	op.outcome = outcome
	st.slot.clear(op)
	op.cancel()
	observeFinish(op, outcome)
	b.publish(outcomeEvent(outcome), op, nil)
	b.log.Debug().Str("mode", st.mode.String()).Str("op", op.id).Str("outcome", string(outcome)).Msg("operation finished")
	close(op.done)
}
