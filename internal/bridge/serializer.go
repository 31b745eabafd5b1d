package bridge

import "context"

// serializer is a single-slot semaphore guarding one mode's entry point.
// Unlike sync.Mutex, acquisition can be abandoned when a context ends.
type serializer struct {
	ch chan struct{} // size 1: single holder
}

func newSerializer() *serializer { return &serializer{ch: make(chan struct{}, 1)} }

// Lock blocks until the serializer is acquired.
func (s *serializer) Lock() { s.ch <- struct{}{} }

// LockContext acquires the serializer or returns ctx.Err() if ctx ends first.
func (s *serializer) LockContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock releases the serializer. It must pair with a successful Lock.
func (s *serializer) Unlock() { <-s.ch }

// held reports whether some caller currently holds the serializer.
func (s *serializer) held() bool { return len(s.ch) == 1 }
