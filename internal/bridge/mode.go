package bridge

import "sync/atomic"

// CallMode selects one of the two independent entry-point families.
type CallMode int

const (
	Blocking CallMode = iota
	Streaming
)

func (m CallMode) String() string {
	switch m {
	case Blocking:
		return "blocking"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// modeState is the mode-local state: its serializer and operation slot.
type modeState struct {
	mode    CallMode
	ser     *serializer
	slot    slot
	started atomic.Uint64
}

func newModeState(m CallMode) *modeState {
	return &modeState{mode: m, ser: newSerializer()}
}
