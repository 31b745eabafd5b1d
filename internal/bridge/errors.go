package bridge

import (
	"errors"
	"strings"
)

const (
	invalidPromptPrefix    = "invalid input: "
	modelUnavailablePrefix = "model not available: "
	generationPrefix       = "generation error: "
)

// invalidPromptError rejects a prompt before any work starts.
type invalidPromptError struct{ reason string }

func (e invalidPromptError) Error() string { return invalidPromptPrefix + e.reason }

// IsInvalidPrompt reports whether err rejected the prompt.
func IsInvalidPrompt(err error) bool {
	var e invalidPromptError
	return errors.As(err, &e)
}

// modelUnavailableError reports that the engine cannot serve requests.
type modelUnavailableError struct{ cause error }

func (e modelUnavailableError) Error() string { return modelUnavailablePrefix + e.cause.Error() }
func (e modelUnavailableError) Unwrap() error { return e.cause }

// IsModelUnavailable reports whether err came from an unavailable engine.
func IsModelUnavailable(err error) bool {
	var e modelUnavailableError
	return errors.As(err, &e)
}

// generationError wraps a failure raised by the engine mid-generation.
type generationError struct{ cause error }

func (e generationError) Error() string { return generationPrefix + e.cause.Error() }
func (e generationError) Unwrap() error { return e.cause }

// IsGenerationError reports whether err was raised by the engine.
func IsGenerationError(err error) bool {
	var e generationError
	return errors.As(err, &e)
}

// ParseError rebuilds the typed error behind a message delivered through
// OnError, so IsInvalidPrompt, IsModelUnavailable and IsGenerationError work
// on the receiving side of a callback. Unknown messages come back as a plain
// error.
func ParseError(msg string) error {
	if rest, ok := strings.CutPrefix(msg, invalidPromptPrefix); ok {
		return invalidPromptError{reason: rest}
	}
	if rest, ok := strings.CutPrefix(msg, modelUnavailablePrefix); ok {
		return modelUnavailableError{cause: errors.New(rest)}
	}
	if rest, ok := strings.CutPrefix(msg, generationPrefix); ok {
		return generationError{cause: errors.New(rest)}
	}
	return errors.New(msg)
}
