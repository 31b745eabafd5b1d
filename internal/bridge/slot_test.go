package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSlotSupersedeCancelsPredecessor(t *testing.T) {
	var s slot
	_, c1 := context.WithCancel(context.Background())
	op1 := newOperation(Streaming, c1)
	if old := s.supersede(op1); old != nil {
		t.Fatalf("unexpected predecessor")
	}
	_, c2 := context.WithCancel(context.Background())
	op2 := newOperation(Streaming, c2)
	if old := s.supersede(op2); old != op1 {
		t.Fatalf("supersede returned %v", old)
	}
	if !op1.Cancelled() || op2.Cancelled() {
		t.Fatalf("cancel flags: op1=%v op2=%v", op1.Cancelled(), op2.Cancelled())
	}
	// A stale operation cannot clear its successor.
	if s.clear(op1) {
		t.Fatalf("stale clear succeeded")
	}
	if s.current() != op2 {
		t.Fatalf("current changed")
	}
	if !s.clear(op2) || s.current() != nil {
		t.Fatalf("clear failed")
	}
}

func TestSlotCancelCurrent(t *testing.T) {
	var s slot
	if s.cancelCurrent() != nil {
		t.Fatalf("empty slot returned op")
	}
	ctx, c := context.WithCancel(context.Background())
	op := newOperation(Streaming, c)
	s.supersede(op)
	if s.cancelCurrent() != op || s.current() != nil {
		t.Fatalf("cancelCurrent did not remove op")
	}
	if !op.Cancelled() || ctx.Err() == nil {
		t.Fatalf("op not cancelled")
	}
}

func TestRejectedOperationIsFinished(t *testing.T) {
	op := rejectedOperation(Blocking)
	select {
	case <-op.Done():
	default:
		t.Fatalf("rejected op not done")
	}
	if op.Outcome() != OutcomeRejected {
		t.Fatalf("outcome=%q", op.Outcome())
	}
	if op.ID() == "" || op.Mode() != Blocking {
		t.Fatalf("unexpected op: %+v", op)
	}
}

func TestOperationOutcomeEmptyUntilDone(t *testing.T) {
	_, c := context.WithCancel(context.Background())
	op := newOperation(Blocking, c)
	if op.Outcome() != "" {
		t.Fatalf("outcome before done: %q", op.Outcome())
	}
}

func TestSerializerLockContext(t *testing.T) {
	s := newSerializer()
	if err := s.LockContext(context.Background()); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !s.held() {
		t.Fatalf("not held")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.LockContext(ctx); err == nil {
		t.Fatalf("expected timeout while held")
	}
	s.Unlock()
	if s.held() {
		t.Fatalf("still held")
	}
	done, c := context.WithCancel(context.Background())
	c()
	if err := s.LockContext(done); err == nil {
		t.Fatalf("expected error for done context")
	}
}

func TestValidatePrompt(t *testing.T) {
	if _, err := validatePrompt(nil); !IsInvalidPrompt(err) {
		t.Fatalf("nil: %v", err)
	}
	if got, err := validatePrompt([]byte("héllo")); err != nil || got != "héllo" {
		t.Fatalf("valid: %q %v", got, err)
	}
	if CallMode(7).String() != "unknown" || Blocking.String() != "blocking" {
		t.Fatalf("mode strings")
	}
}

func TestParseErrorRoundTrips(t *testing.T) {
	cases := []struct {
		err  error
		kind func(error) bool
	}{
		{invalidPromptError{reason: "prompt cannot be empty"}, IsInvalidPrompt},
		{modelUnavailableError{cause: errors.New("offline")}, IsModelUnavailable},
		{generationError{cause: errors.New("boom")}, IsGenerationError},
	}
	for _, c := range cases {
		got := ParseError(c.err.Error())
		if !c.kind(got) || got.Error() != c.err.Error() {
			t.Fatalf("ParseError(%q) = %#v", c.err.Error(), got)
		}
	}
	other := ParseError("something else")
	if IsInvalidPrompt(other) || IsModelUnavailable(other) || IsGenerationError(other) {
		t.Fatalf("unexpected classification of %v", other)
	}
}
