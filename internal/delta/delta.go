// Package delta turns cumulative text snapshots into incremental chunks.
//
// Engines report progress as "everything generated so far"; callers on the
// other side of the bridge want only the newly added suffix. Next is the pure
// transformation, Extractor keeps the previous snapshot for one operation.
package delta

import (
	"strings"
	"unicode/utf8"
)

// replacement stands in for bytes that can never form valid UTF-8.
const replacement = "\uFFFD"

// Next returns the suffix of next beyond prev and whether next extended prev.
//
// When next is not a prefix-extension of prev the engine broke its contract;
// the whole of next is returned as the chunk with ok=false and callers must
// adopt next as the new baseline. Next works on bytes: engines that fold
// token pieces may cut a multi-byte rune, which Extractor repairs.
func Next(prev, next string) (chunk string, ok bool) {
	if !strings.HasPrefix(next, prev) {
		return next, false
	}
	return next[len(prev):], true
}

// Extractor tracks the last snapshot of a single operation.
// It is not safe for concurrent use; one operation owns one Extractor.
//
// Chunks returned by Push and Flush are always valid UTF-8. A trailing
// incomplete rune is held back until a later snapshot completes it.
type Extractor struct {
	prev   string
	held   string
	resets int
}

// Push records snapshot and returns the chunk to deliver. An empty chunk
// means nothing new was produced and no callback should fire.
func (e *Extractor) Push(snapshot string) string {
	chunk, ok := Next(e.prev, snapshot)
	if ok {
		chunk = e.held + chunk
	} else {
		e.resets++
	}
	e.prev = snapshot
	cut := len(chunk) - partialTail(chunk)
	e.held = chunk[cut:]
	return strings.ToValidUTF8(chunk[:cut], replacement)
}

// Flush returns whatever Push held back, with bytes that never completed a
// rune replaced by U+FFFD. Call it once the engine sequence has ended.
func (e *Extractor) Flush() string {
	rest := e.held
	e.held = ""
	return strings.ToValidUTF8(rest, replacement)
}

// Snapshot returns the last snapshot pushed.
func (e *Extractor) Snapshot() string { return e.prev }

// Resets reports how many non-extending snapshots were seen.
func (e *Extractor) Resets() int { return e.resets }

// partialTail returns the length of a trailing rune prefix in s that more
// bytes could still complete, or 0.
func partialTail(s string) int {
	for i := 1; i < utf8.UTFMax && i <= len(s); i++ {
		c := s[len(s)-i]
		if !utf8.RuneStart(c) {
			continue
		}
		if c >= utf8.RuneSelf && !utf8.FullRuneInString(s[len(s)-i:]) {
			return i
		}
		return 0
	}
	return 0
}
