package bridge

import "context"

// Respond runs prompt in blocking mode. It returns only after the operation's
// terminal callback has been invoked, or after the operation stopped silently
// because it was superseded.
//
// Callbacks run on a background goroutine while the calling goroutine is
// parked; they must not call Respond themselves.
func (b *Bridge) Respond(prompt []byte, ud UserData, cb Callbacks) {
	b.RespondContext(context.Background(), prompt, ud, cb)
}

// RespondContext is Respond with an abandonment context. If ctx ends while
// waiting for the serializer nothing is started and no callback fires. If it
// ends while the operation runs, the operation is cancelled and RespondContext
// returns without waiting for it; a callback already executing may still
// complete, but no further ones are started.
func (b *Bridge) RespondContext(ctx context.Context, prompt []byte, ud UserData, cb Callbacks) {
	st := b.modes[Blocking]
	if err := st.ser.LockContext(ctx); err != nil {
		b.log.Debug().Str("mode", st.mode.String()).Err(err).Msg("respond abandoned before start")
		return
	}
	defer st.ser.Unlock()

	op := b.launch(st, prompt, ud, cb)
	select {
	case <-op.Done():
	case <-ctx.Done():
		op.Cancel()
		b.log.Debug().Str("mode", st.mode.String()).Str("op", op.id).Err(ctx.Err()).Msg("respond abandoned")
	}
}
