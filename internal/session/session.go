// Package session offers a synchronous Go API over the bridge: a session
// that is only created when the model is available, a collecting Response,
// and a StreamResponse that blocks until its stream ends.
package session

import (
	"errors"
	"strings"
	"sync"

	"fmbridge/internal/bridge"
)

// Error kinds. Errors returned by Response and StreamResponse match exactly
// one of them with errors.Is and keep the bridge message as their text.
var (
	ErrModelNotAvailable = errors.New("model not available")
	ErrInvalidInput      = errors.New("invalid input")
	ErrGeneration        = errors.New("generation error")
	// ErrInternal reports a generation that ended as failed without an
	// error message, such as a panicking onChunk.
	ErrInternal = errors.New("internal error")
)

// Session wraps a Bridge. Response calls are serialized by the bridge; a new
// StreamResponse supersedes a running one.
type Session struct {
	b *bridge.Bridge
}

// New checks availability and returns a session over b.
func New(b *bridge.Bridge) (*Session, error) {
	if !b.CheckAvailability() {
		return nil, ErrModelNotAvailable
	}
	return &Session{b: b}, nil
}

// callError pairs an error kind with the bridge error it was derived from.
type callError struct {
	kind  error
	cause error
}

func (e *callError) Error() string   { return e.cause.Error() }
func (e *callError) Unwrap() []error { return []error{e.kind, e.cause} }

// classify turns an onError message into a kinded error.
func classify(msg string) error {
	cause := bridge.ParseError(msg)
	switch {
	case bridge.IsModelUnavailable(cause):
		return &callError{kind: ErrModelNotAvailable, cause: cause}
	case bridge.IsInvalidPrompt(cause):
		return &callError{kind: ErrInvalidInput, cause: cause}
	case bridge.IsGenerationError(cause):
		return &callError{kind: ErrGeneration, cause: cause}
	default:
		return &callError{kind: ErrInternal, cause: cause}
	}
}

var errNoResult = &callError{kind: ErrInternal, cause: errors.New("generation ended without a result")}

// Response generates a full response for prompt.
func (s *Session) Response(prompt string) (string, error) {
	var (
		sb       strings.Builder
		callErr  error
		finished bool
	)
	s.b.Respond([]byte(prompt), nil, bridge.Callbacks{
		OnChunk: func(c string, _ bridge.UserData) { sb.WriteString(c) },
		OnDone:  func(bridge.UserData) { finished = true },
		OnError: func(msg string, _ bridge.UserData) { callErr = classify(msg) },
	})
	if callErr != nil {
		return "", callErr
	}
	if !finished {
		return "", errNoResult
	}
	return sb.String(), nil
}

// StreamResponse streams prompt, calling onChunk with each delta, and returns
// when the stream finishes. A stream cancelled by CancelStream or superseded
// by another StreamResponse returns nil. A panic in onChunk ends the stream
// with ErrInternal.
func (s *Session) StreamResponse(prompt string, onChunk func(string)) error {
	var (
		mu      sync.Mutex
		callErr error
	)
	op := s.b.StartStream([]byte(prompt), nil, bridge.Callbacks{
		OnChunk: func(c string, _ bridge.UserData) {
			if onChunk != nil {
				onChunk(c)
			}
		},
		OnError: func(msg string, _ bridge.UserData) {
			mu.Lock()
			callErr = classify(msg)
			mu.Unlock()
		},
	})
	<-op.Done()
	mu.Lock()
	defer mu.Unlock()
	if callErr == nil && op.Outcome() == bridge.OutcomeFailed {
		return errNoResult
	}
	return callErr
}

// CancelStream stops the running stream, if any.
func (s *Session) CancelStream() { s.b.StopStream() }

// Bridge returns the underlying bridge.
func (s *Session) Bridge() *bridge.Bridge { return s.b }
