package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames defines the animation characters for the spinner.
var spinnerFrames = []string{"|", "/", "-", "\\"}

// spinnerInterval is the time between spinner frame updates.
const spinnerInterval = 100 * time.Millisecond

// Spinner shows an animated message while a single check is in flight.
// On a non-terminal it stays silent so piped output is not polluted.
type Spinner struct {
	mu       sync.Mutex
	output   io.Writer
	message  string
	done     chan struct{}
	finished chan struct{}
	started  bool
	stopped  bool
	isTTY    bool
}

// NewSpinner creates a new spinner that writes to the given output.
// If output is nil, os.Stderr is used.
func NewSpinner(output io.Writer) *Spinner {
	if output == nil {
		output = os.Stderr
	}
	return &Spinner{
		output:   output,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		isTTY:    IsTerminal(output),
	}
}

// Start begins the animation with the given message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if !s.isTTY || s.started || s.stopped {
		return
	}
	s.started = true
	go s.animate()
}

// SetMessage updates the spinner message while it's running.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Stop halts the animation and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	if !s.halt() {
		return
	}
	if s.isTTY {
		fmt.Fprintf(s.output, "\r%s\r", strings.Repeat(" ", lineWidth))
	}
}

// halt stops the animation goroutine and waits for it to exit.
// It reports whether this call did the stopping.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return false
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	close(s.done)
	if started {
		<-s.finished
	}
	return true
}

// animate runs the spinner animation loop.
func (s *Spinner) animate() {
	defer close(s.finished)

	frame := 0
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			char := spinnerFrames[frame%len(spinnerFrames)]
			fmt.Fprint(s.output, pad(fmt.Sprintf("\r%s %s", char, msg)))
			frame++
		}
	}
}
