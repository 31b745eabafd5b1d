package bridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fmbridge/internal/engine"
)

func TestRespondDeliversChunksInOrderThenDone(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"Hi", "Hi there", "Hi there!"}})
	rec := newRecorder()
	b.Respond([]byte("greet"), nil, rec.callbacks())
	// Respond must not return before the terminal callback.
	assert.Equal(t, []string{"chunk:Hi", "chunk: there", "chunk:!", "done"}, rec.snapshot())
	assert.Nil(t, b.Current(Blocking))
}

func TestRespondSuppressesEmptyDeltasAndReconstructs(t *testing.T) {
	steps := []string{"", "a", "a", "ab", "ab", "abc"}
	b := New(&engine.Scripted{Steps: steps})
	var got strings.Builder
	chunks := 0
	b.Respond([]byte("p"), nil, Callbacks{OnChunk: func(c string, _ UserData) {
		chunks++
		got.WriteString(c)
	}})
	assert.Equal(t, "abc", got.String())
	assert.Equal(t, 3, chunks)
}

func TestRespondNonExtendingSnapshotEmitsWholeSnapshot(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"Hello", "Bye", "Bye!"}})
	rec := newRecorder()
	b.Respond([]byte("p"), nil, rec.callbacks())
	assert.Equal(t, []string{"chunk:Hello", "chunk:Bye", "chunk:!", "done"}, rec.snapshot())
}

func TestRespondChunksNeverSplitRunes(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"price: \xe2\x82", "price: \xe2\x82\xac5"}})
	rec := newRecorder()
	b.Respond([]byte("p"), nil, rec.callbacks())
	assert.Equal(t, []string{"chunk:price: ", "chunk:€5", "done"}, rec.snapshot())
}

func TestRespondFlushesIncompleteRuneBeforeTerminal(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"ok \xf0\x9f"}, Err: errors.New("cut \xff off")})
	rec := newRecorder()
	b.Respond([]byte("p"), nil, rec.callbacks())
	got := rec.snapshot()
	assert.Equal(t, []string{"chunk:ok ", "chunk:\uFFFD", "error:generation error: cut \uFFFD off"}, got)
	for _, ev := range got {
		assert.True(t, utf8.ValidString(ev), "invalid UTF-8 in %q", ev)
	}
}

func TestInvalidPromptRejectedSynchronously(t *testing.T) {
	cases := map[string][]byte{
		"null":     nil,
		"empty":    {},
		"bad utf8": {0xff, 0xfe},
		"nul byte": []byte("a\x00b"),
	}
	for name, prompt := range cases {
		t.Run(name, func(t *testing.T) {
			eng := newGatedEngine()
			pub := NewMemoryPublisher()
			b := NewWithConfig(Config{Engine: eng, Publisher: pub})

			rec := newRecorder()
			b.Respond(prompt, nil, rec.callbacks())
			ev := rec.snapshot()
			require.Len(t, ev, 1)
			assert.True(t, strings.HasPrefix(ev[0], "error:invalid input: "), ev[0])

			srec := newRecorder()
			op := b.StartStream(prompt, nil, srec.callbacks())
			// Already finished and rejected before StartStream returned.
			assert.Equal(t, OutcomeRejected, op.Outcome())
			require.Len(t, srec.snapshot(), 1)

			assert.Empty(t, pub.Named(EventStarted))
			assert.Len(t, pub.Named(EventRejected), 2)
			assert.Empty(t, eng.runs, "no background work may start")
		})
	}
}

func TestEngineUnavailableReportsError(t *testing.T) {
	eng := newGatedEngine()
	eng.unavailable = engine.ErrDependencyUnavailable("no model")
	b := New(eng)
	assert.False(t, b.CheckAvailability())

	rec := newRecorder()
	b.Respond([]byte("p"), nil, rec.callbacks())
	assert.Equal(t, []string{"error:model not available: no model"}, rec.snapshot())
	assert.Empty(t, eng.runs)
}

func TestEngineErrorAfterChunks(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"par", "partial"}, Err: errEngine})
	rec := newRecorder()
	b.Respond([]byte("p"), nil, rec.callbacks())
	assert.Equal(t, []string{"chunk:par", "chunk:tial", "error:generation error: engine exploded"}, rec.snapshot())
}

func TestNilCallbacksTolerated(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"a", "ab"}, Err: errEngine})
	assert.NotPanics(t, func() {
		b.Respond([]byte("p"), nil, Callbacks{})
		b.Respond(nil, nil, Callbacks{})
		op := b.StartStream([]byte("p"), nil, Callbacks{})
		waitDone(t, op)
		assert.Equal(t, OutcomeFailed, op.Outcome())
	})
}

func TestUserDataPassedVerbatim(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"x", "xy"}})
	ud := marker()
	rec := newRecorder()
	b.Respond([]byte("p"), ud, rec.callbacks())
	require.Len(t, rec.uds, 3)
	for _, got := range rec.uds {
		assert.Equal(t, ud, got)
	}

	rec = newRecorder()
	b.Respond(nil, ud, rec.callbacks())
	require.Len(t, rec.uds, 1)
	assert.Equal(t, ud, rec.uds[0])
}

func TestStartStreamReturnsBeforeCallbacks(t *testing.T) {
	eng := newGatedEngine()
	b := New(eng)
	rec := newRecorder()
	op := b.StartStream([]byte("p"), nil, rec.callbacks())
	run := eng.next(t)
	assert.Empty(t, rec.snapshot())
	assert.Equal(t, op, b.Current(Streaming))

	run.feed(t, "Hi")
	rec.wait(t, "chunk:Hi")
	run.feed(t, "Hi there")
	run.end()
	waitDone(t, op)
	assert.Equal(t, OutcomeCompleted, op.Outcome())
	assert.Equal(t, []string{"chunk:Hi", "chunk: there", "done"}, rec.snapshot())
	assert.Nil(t, b.Current(Streaming))
}

func TestStreamSupersession(t *testing.T) {
	eng := newGatedEngine()
	pub := NewMemoryPublisher()
	b := NewWithConfig(Config{Engine: eng, Publisher: pub})

	first := newRecorder()
	op1 := b.StartStream([]byte("one"), nil, first.callbacks())
	run1 := eng.next(t)
	run1.feed(t, "a")
	first.wait(t, "chunk:a")

	second := newRecorder()
	op2 := b.StartStream([]byte("two"), nil, second.callbacks())
	run2 := eng.next(t)
	assert.True(t, op1.Cancelled())
	waitDone(t, op1)
	assert.Equal(t, OutcomeCancelled, op1.Outcome())

	run2.feed(t, "b")
	run2.feed(t, "bc")
	run2.end()
	waitDone(t, op2)

	assert.Equal(t, []string{"chunk:a"}, first.snapshot(), "superseded stream must go silent")
	assert.Equal(t, []string{"chunk:b", "chunk:c", "done"}, second.snapshot())
	require.Len(t, pub.Named(EventSuperseded), 1)
	assert.Equal(t, op1.ID(), pub.Named(EventSuperseded)[0].Operation)
	assert.Len(t, pub.Named(EventCancelled), 1)
	assert.Len(t, pub.Named(EventCompleted), 1)
}

func TestStopStreamIsIdempotent(t *testing.T) {
	eng := newGatedEngine()
	pub := NewMemoryPublisher()
	b := NewWithConfig(Config{Engine: eng, Publisher: pub})
	assert.NotPanics(t, func() {
		b.StopStream()
		b.StopStream()
	})
	assert.Empty(t, pub.Events())

	rec := newRecorder()
	op := b.StartStream([]byte("p"), nil, rec.callbacks())
	run := eng.next(t)
	run.feed(t, "x")
	rec.wait(t, "chunk:x")

	b.StopStream()
	b.StopStream()
	waitDone(t, op)
	assert.Equal(t, OutcomeCancelled, op.Outcome())
	assert.Equal(t, []string{"chunk:x"}, rec.snapshot(), "no terminal callback after stop")
	assert.Nil(t, b.Current(Streaming))
	assert.Len(t, pub.Named(EventStopped), 1)
}

func TestStopStreamDoesNotTouchBlocking(t *testing.T) {
	eng := newGatedEngine()
	b := New(eng)
	rec := newRecorder()
	returned := make(chan struct{})
	go func() {
		b.Respond([]byte("p"), nil, rec.callbacks())
		close(returned)
	}()
	run := eng.next(t)
	b.StopStream()
	run.feed(t, "ok")
	run.end()
	<-returned
	assert.Equal(t, []string{"chunk:ok", "done"}, rec.snapshot())
}

func TestStopFromInsideStreamCallback(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"1", "12", "123", "1234"}, Delay: time.Millisecond})
	var mu sync.Mutex
	var chunks []string
	op := b.StartStream([]byte("p"), nil, Callbacks{
		OnChunk: func(c string, _ UserData) {
			mu.Lock()
			chunks = append(chunks, c)
			n := len(chunks)
			mu.Unlock()
			if n == 2 {
				b.StopStream()
			}
		},
		OnDone: func(UserData) { t.Errorf("done after stop") },
	})
	waitDone(t, op)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"1", "2"}, chunks)
	assert.Equal(t, OutcomeCancelled, op.Outcome())
}

func TestBlockingCallsAreSerialized(t *testing.T) {
	eng := &countingEngine{steps: []string{"a", "ab", "abc"}, delay: 2 * time.Millisecond}
	b := New(eng)

	var mu sync.Mutex
	var log []string
	cb := func(tag string) Callbacks {
		return Callbacks{
			OnChunk: func(c string, _ UserData) { mu.Lock(); log = append(log, tag); mu.Unlock() },
			OnDone:  func(UserData) { mu.Lock(); log = append(log, tag+"!"); mu.Unlock() },
		}
	}
	var wg sync.WaitGroup
	for _, tag := range []string{"A", "B", "C", "D"} {
		wg.Add(1)
		go func(tag string) {
			defer wg.Done()
			b.Respond([]byte(tag), nil, cb(tag))
		}(tag)
	}
	wg.Wait()

	assert.EqualValues(t, 1, eng.peak.Load(), "blocking operations overlapped")
	// Each call's callbacks form one contiguous block ending with its done.
	require.Len(t, log, 16)
	for i := 0; i < len(log); i += 4 {
		tag := log[i]
		assert.Equal(t, []string{tag, tag, tag, tag + "!"}, log[i:i+4])
	}
}

func TestModesRunIndependently(t *testing.T) {
	eng := newGatedEngine()
	b := New(eng)

	brec := newRecorder()
	returned := make(chan struct{})
	go func() {
		b.Respond([]byte("blocking"), nil, brec.callbacks())
		close(returned)
	}()
	brun := eng.next(t)

	srec := newRecorder()
	op := b.StartStream([]byte("streaming"), nil, srec.callbacks())
	srun := eng.next(t)
	srun.feed(t, "s")
	srun.end()
	waitDone(t, op)
	assert.Equal(t, []string{"chunk:s", "done"}, srec.snapshot())

	select {
	case <-returned:
		t.Fatalf("blocking call returned early")
	default:
	}
	brun.feed(t, "b")
	brun.end()
	<-returned
	assert.Equal(t, []string{"chunk:b", "done"}, brec.snapshot())
}

func TestRespondContextAbandon(t *testing.T) {
	eng := newGatedEngine()
	b := New(eng)
	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	returned := make(chan struct{})
	go func() {
		b.RespondContext(ctx, []byte("p"), nil, rec.callbacks())
		close(returned)
	}()
	run := eng.next(t)
	run.feed(t, "x")
	rec.wait(t, "chunk:x")
	cancel()
	<-returned

	// The engine sees cancellation; the abandoned call stays silent.
	<-run.ctx.Done()
	require.Eventually(t, func() bool { return b.Current(Blocking) == nil }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"chunk:x"}, rec.snapshot())

	// The mode is usable again.
	rec2 := newRecorder()
	go func() {
		r := <-eng.runs
		r.steps <- step{snap: "y"}
		r.end()
	}()
	b.Respond([]byte("p2"), nil, rec2.callbacks())
	assert.Equal(t, []string{"chunk:y", "done"}, rec2.snapshot())
}

func TestRespondContextCanceledBeforeStart(t *testing.T) {
	eng := newGatedEngine()
	b := New(eng)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := newRecorder()
	b.RespondContext(ctx, []byte("p"), nil, rec.callbacks())
	assert.Empty(t, rec.snapshot())
	assert.Empty(t, eng.runs)
}

func TestEngineErrorWhileStreaming(t *testing.T) {
	eng := newGatedEngine()
	b := New(eng)
	rec := newRecorder()
	op := b.StartStream([]byte("p"), nil, rec.callbacks())
	run := eng.next(t)
	run.feed(t, "ok")
	run.fail(t, errEngine)
	waitDone(t, op)
	assert.Equal(t, OutcomeFailed, op.Outcome())
	assert.Equal(t, []string{"chunk:ok", "error:generation error: engine exploded"}, rec.snapshot())
	assert.Equal(t, 1, rec.terminals())
}

func TestCallbackPanicIsContained(t *testing.T) {
	b := New(&engine.Scripted{Steps: []string{"a", "ab"}})
	done := false
	assert.NotPanics(t, func() {
		b.Respond([]byte("p"), nil, Callbacks{
			OnChunk: func(string, UserData) { panic("caller bug") },
			OnDone:  func(UserData) { done = true },
		})
	})
	assert.False(t, done)
	assert.Nil(t, b.Current(Blocking))
}

func TestStatus(t *testing.T) {
	eng := newGatedEngine()
	b := New(eng)
	op := b.StartStream([]byte("p"), nil, Callbacks{})
	run := eng.next(t)

	st := b.Status()
	assert.Equal(t, "gated", st.Engine)
	assert.True(t, st.Available)
	require.Len(t, st.Modes, 2)
	assert.Equal(t, "blocking", st.Modes[0].Mode)
	assert.Empty(t, st.Modes[0].Operation)
	assert.Equal(t, "streaming", st.Modes[1].Mode)
	assert.Equal(t, op.ID(), st.Modes[1].Operation)
	assert.EqualValues(t, 1, st.Modes[1].Started)

	run.end()
	waitDone(t, op)
	eng.unavailable = engine.ErrDependencyUnavailable("gone")
	st = b.Status()
	assert.False(t, st.Available)
	assert.Equal(t, "gone", st.Reason)
}
