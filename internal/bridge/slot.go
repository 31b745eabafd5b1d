package bridge

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Outcome is how an operation ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeRejected marks calls refused before any background work started.
	OutcomeRejected Outcome = "rejected"
)

// Operation is a handle to one background generation.
type Operation struct {
	id      string
	mode    CallMode
	started time.Time

	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	outcome   Outcome // written once before done is closed
}

func newOperation(mode CallMode, cancel context.CancelFunc) *Operation {
	return &Operation{
		id:      uuid.NewString(),
		mode:    mode,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// rejectedOperation returns an already finished handle for a refused call.
func rejectedOperation(mode CallMode) *Operation {
	op := newOperation(mode, func() {})
	op.outcome = OutcomeRejected
	close(op.done)
	return op
}

func (o *Operation) ID() string     { return o.id }
func (o *Operation) Mode() CallMode { return o.mode }

// Done is closed once the background task has delivered its last callback.
func (o *Operation) Done() <-chan struct{} { return o.done }

// Outcome reports how the operation ended. Only meaningful after Done.
func (o *Operation) Outcome() Outcome {
	select {
	case <-o.done:
		return o.outcome
	default:
		return ""
	}
}

// Cancel requests cooperative cancellation. It never blocks; the background
// task notices at its next snapshot boundary.
func (o *Operation) Cancel() {
	o.cancelled.Store(true)
	o.cancel()
}

// Cancelled reports whether cancellation was requested.
func (o *Operation) Cancelled() bool { return o.cancelled.Load() }

// slot holds the current operation of one mode. Writers hold the mode's
// serializer; the background task only ever clears its own entry, lock-free,
// so it never waits on a caller that is blocked in Respond.
type slot struct {
	cur atomic.Pointer[Operation]
}

// supersede installs op and cancels the previous operation, returning it.
func (s *slot) supersede(op *Operation) *Operation {
	old := s.cur.Swap(op)
	if old != nil {
		old.Cancel()
	}
	return old
}

// clear removes op if it is still the current operation.
func (s *slot) clear(op *Operation) bool { return s.cur.CompareAndSwap(op, nil) }

// cancelCurrent cancels and removes the current operation, if any.
func (s *slot) cancelCurrent() *Operation {
	old := s.cur.Swap(nil)
	if old != nil {
		old.Cancel()
	}
	return old
}

func (s *slot) current() *Operation { return s.cur.Load() }
