package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"fmbridge/pkg/types"
)

// lineWriter serializes NDJSON lines from bridge callbacks, which run on the
// bridge's goroutines, onto the response. After close every write is dropped,
// so a callback that outlives its handler never touches the ResponseWriter.
type lineWriter struct {
	mu     sync.Mutex
	enc    *json.Encoder
	flush  func()
	closed bool
	end    string
}

func newLineWriter(w http.ResponseWriter, debug bool) *lineWriter {
	out := io.Writer(w)
	if debug {
		out = io.MultiWriter(w, &loggingLineWriter{})
	}
	lw := &lineWriter{enc: json.NewEncoder(out)}
	if f, ok := w.(http.Flusher); ok {
		lw.flush = f.Flush
	}
	return lw
}

func (lw *lineWriter) write(line types.StreamLine) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.closed {
		return
	}
	switch {
	case line.Done:
		lw.end = "done"
	case line.Error != "":
		lw.end = "error"
	case line.Cancelled:
		lw.end = "cancelled"
	}
	if err := lw.enc.Encode(line); err != nil {
		lw.closed = true
		return
	}
	if lw.flush != nil {
		lw.flush()
	}
}

// close stops further writes and reports the terminal line kind written, or
// fallback when there was none.
func (lw *lineWriter) close(fallback string) string {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.closed = true
	if lw.end == "" {
		return fallback
	}
	return lw.end
}
