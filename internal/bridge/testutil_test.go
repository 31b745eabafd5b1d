package bridge

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"
)

// step is one scripted engine action: a snapshot or a failure.
type step struct {
	snap string
	err  error
}

// gatedRun is one generation of gatedEngine; the test feeds it step by step.
type gatedRun struct {
	prompt string
	steps  chan step
	ctx    context.Context
}

// feed sends a snapshot, failing the test if the run stopped listening.
func (r *gatedRun) feed(t *testing.T, snap string) {
	t.Helper()
	select {
	case r.steps <- step{snap: snap}:
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not accept snapshot %q", snap)
	}
}

func (r *gatedRun) fail(t *testing.T, err error) {
	t.Helper()
	select {
	case r.steps <- step{err: err}:
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not accept error")
	}
}

// end closes the run's sequence.
func (r *gatedRun) end() { close(r.steps) }

// gatedEngine hands each generation to the test through runs, so tests decide
// exactly when every snapshot is produced.
type gatedEngine struct {
	runs        chan *gatedRun
	unavailable error
}

func newGatedEngine() *gatedEngine { return &gatedEngine{runs: make(chan *gatedRun, 8)} }

func (g *gatedEngine) Name() string     { return "gated" }
func (g *gatedEngine) Available() error { return g.unavailable }

func (g *gatedEngine) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		run := &gatedRun{prompt: prompt, steps: make(chan step), ctx: ctx}
		g.runs <- run
		for {
			select {
			case s, ok := <-run.steps:
				if !ok {
					return
				}
				if s.err != nil {
					yield("", s.err)
					return
				}
				if !yield(s.snap, nil) {
					return
				}
			case <-ctx.Done():
				yield("", ctx.Err())
				return
			}
		}
	}
}

// next waits for the engine to start a generation.
func (g *gatedEngine) next(t *testing.T) *gatedRun {
	t.Helper()
	select {
	case r := <-g.runs:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("engine was not started")
		return nil
	}
}

// countingEngine replays steps with a delay and records peak concurrency.
type countingEngine struct {
	steps  []string
	delay  time.Duration
	active atomic.Int32
	peak   atomic.Int32
}

func (c *countingEngine) Name() string     { return "counting" }
func (c *countingEngine) Available() error { return nil }

func (c *countingEngine) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		n := c.active.Add(1)
		defer c.active.Add(-1)
		for {
			p := c.peak.Load()
			if n <= p || c.peak.CompareAndSwap(p, n) {
				break
			}
		}
		for _, s := range c.steps {
			time.Sleep(c.delay)
			if !yield(prompt+":"+s, nil) {
				return
			}
		}
	}
}

// recorder captures callback invocations in order.
type recorder struct {
	mu     sync.Mutex
	events []string
	uds    []UserData
	notify chan string
}

func newRecorder() *recorder { return &recorder{notify: make(chan string, 64)} }

func (r *recorder) add(ev string, ud UserData) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.uds = append(r.uds, ud)
	r.mu.Unlock()
	select {
	case r.notify <- ev:
	default:
	}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnChunk: func(c string, ud UserData) { r.add("chunk:"+c, ud) },
		OnDone:  func(ud UserData) { r.add("done", ud) },
		OnError: func(msg string, ud UserData) { r.add("error:"+msg, ud) },
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// wait blocks until an event with the given prefix is recorded.
func (r *recorder) wait(t *testing.T, prefix string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		for _, ev := range r.snapshot() {
			if strings.HasPrefix(ev, prefix) {
				return
			}
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("no %q event; got %q", prefix, r.snapshot())
		}
	}
}

func (r *recorder) terminals() int {
	n := 0
	for _, ev := range r.snapshot() {
		if ev == "done" || strings.HasPrefix(ev, "error:") {
			n++
		}
	}
	return n
}

// waitDone waits for an operation to finish.
func waitDone(t *testing.T, op *Operation) {
	t.Helper()
	select {
	case <-op.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("operation %s did not finish", op.ID())
	}
}

// marker returns a distinct opaque user-data pointer.
func marker() UserData {
	v := new(int)
	return unsafe.Pointer(v)
}

var errEngine = errors.New("engine exploded")
