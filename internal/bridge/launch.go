package bridge

import (
	"context"
)

// launch validates the call, supersedes the mode's slot and starts the
// background task. The caller holds st.ser. A refused call gets its error
// callback synchronously and an already finished Operation.
func (b *Bridge) launch(st *modeState, prompt []byte, ud UserData, cb Callbacks) *Operation {
	text, err := validatePrompt(prompt)
	if err == nil {
		if aerr := b.engine.Available(); aerr != nil {
			err = modelUnavailableError{cause: aerr}
		}
	}
	if err != nil {
		op := rejectedOperation(st.mode)
		operationsTotal.WithLabelValues(st.mode.String(), string(OutcomeRejected)).Inc()
		b.publish(EventRejected, op, map[string]any{"error": err.Error()})
		b.log.Debug().Str("mode", st.mode.String()).Err(err).Msg("call rejected")
		cb.error(err.Error(), ud)
		return op
	}

	ctx, cancel := context.WithCancel(context.Background())
	op := newOperation(st.mode, cancel)
	if old := st.slot.supersede(op); old != nil {
		b.publish(EventSuperseded, old, map[string]any{"by": op.id})
		b.log.Debug().Str("mode", st.mode.String()).Str("op", old.id).Str("by", op.id).Msg("operation superseded")
	}
	st.started.Add(1)
	inflight.WithLabelValues(st.mode.String()).Inc()
	b.publish(EventStarted, op, nil)
	b.log.Debug().Str("mode", st.mode.String()).Str("op", op.id).Str("engine", b.engine.Name()).Msg("operation started")

	go b.run(ctx, st, op, text, ud, cb)
	return op
}
