package bridge

// StartStream runs prompt in streaming mode and returns immediately. Callbacks
// are delivered from a background goroutine, possibly after StartStream has
// returned. A running stream is superseded: it stops without further callbacks
// once it observes the cancellation.
//
// The returned Operation can be used to wait for the stream (Done) and to see
// how it ended (Outcome). Callers that only need the callbacks may ignore it.
func (b *Bridge) StartStream(prompt []byte, ud UserData, cb Callbacks) *Operation {
	st := b.modes[Streaming]
	st.ser.Lock()
	defer st.ser.Unlock()
	return b.launch(st, prompt, ud, cb)
}

// StopStream cancels the running stream, if any. It is idempotent and does not
// touch the blocking mode.
func (b *Bridge) StopStream() {
	st := b.modes[Streaming]
	st.ser.Lock()
	defer st.ser.Unlock()
	if op := st.slot.cancelCurrent(); op != nil {
		b.publish(EventStopped, op, nil)
		b.log.Debug().Str("mode", st.mode.String()).Str("op", op.id).Msg("stream stopped")
	}
}
