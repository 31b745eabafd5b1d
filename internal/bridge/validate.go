package bridge

import (
	"bytes"
	"unicode/utf8"
)

// validatePrompt decodes a prompt crossing the boundary. A nil slice stands
// for a null pointer.
func validatePrompt(p []byte) (string, error) {
	switch {
	case p == nil:
		return "", invalidPromptError{reason: "prompt is null"}
	case len(p) == 0:
		return "", invalidPromptError{reason: "prompt cannot be empty"}
	case bytes.IndexByte(p, 0) >= 0:
		return "", invalidPromptError{reason: "prompt contains null byte"}
	case !utf8.Valid(p):
		return "", invalidPromptError{reason: "prompt is not valid UTF-8"}
	}
	return string(p), nil
}
