package bridge

import "unsafe"

// UserData is the caller's opaque context. The bridge never dereferences it
// and hands it back verbatim to every callback of the call it came with.
type UserData = unsafe.Pointer

// ChunkFunc receives each non-empty delta in order.
type ChunkFunc func(chunk string, ud UserData)

// DoneFunc is invoked once when generation completes successfully.
type DoneFunc func(ud UserData)

// ErrorFunc is invoked once with a human-readable message on failure.
type ErrorFunc func(msg string, ud UserData)

// Callbacks groups the per-call callbacks. Any of them may be nil, in which
// case that event is simply not delivered.
type Callbacks struct {
	OnChunk ChunkFunc
	OnDone  DoneFunc
	OnError ErrorFunc
}

func (c Callbacks) chunk(s string, ud UserData) {
	if c.OnChunk != nil {
		c.OnChunk(s, ud)
	}
}

func (c Callbacks) done(ud UserData) {
	if c.OnDone != nil {
		c.OnDone(ud)
	}
}

func (c Callbacks) error(msg string, ud UserData) {
	if c.OnError != nil {
		c.OnError(msg, ud)
	}
}
