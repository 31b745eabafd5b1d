package cli

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// waitSpinner shows progress until the first output arrives. Stop is safe to
// call from callbacks and more than once.
type waitSpinner struct {
	s    *spinner.Spinner
	once sync.Once
}

func newWaitSpinner(w io.Writer, msg string) *waitSpinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = "  " + msg
	_ = s.Color("cyan")
	return &waitSpinner{s: s}
}

func (w *waitSpinner) Start() { w.s.Start() }

func (w *waitSpinner) Stop() { w.once.Do(w.s.Stop) }
