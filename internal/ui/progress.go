package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-isatty"
)

// Spinner shows an indeterminate progress line while an operation executes.
// On a terminal it animates in place; elsewhere it prints the message once.
type Spinner struct {
	out     io.Writer
	message string
	frames  spinner.Spinner

	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// StartSpinner starts a spinner on out
func StartSpinner(out io.Writer, message string, animate bool) *Spinner {
	s := &Spinner{
		out:     out,
		message: message,
		frames:  spinner.Dot,
		done:    make(chan struct{}),
	}

	if !animate {
		_, _ = fmt.Fprintln(out, SpinnerStyle.Render(InfoMarker)+" "+ProgressLabelStyle.Render(message))
		return s
	}

	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.frames.FPS)
	defer ticker.Stop()

	frame := 0
	for {
		_, _ = fmt.Fprint(s.out, "\r"+ansi.EraseEntireLine+
			SpinnerStyle.Render(s.frames.Frames[frame%len(s.frames.Frames)])+" "+
			ProgressLabelStyle.Render(s.message))
		frame++

		select {
		case <-s.done:
			_, _ = fmt.Fprint(s.out, "\r"+ansi.EraseEntireLine)
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the animation and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
}
