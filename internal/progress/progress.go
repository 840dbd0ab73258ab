// Package progress draws transient status on a terminal while checks run.
// Nothing is drawn when the output is not a terminal.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// IsTerminalFunc is the function used to check if a file descriptor is a terminal.
// It can be overridden for testing.
var IsTerminalFunc = term.IsTerminal

// lineWidth is the width cleared when a status line is redrawn.
const lineWidth = 80

type fdWriter interface {
	Fd() uintptr
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return IsTerminalFunc(int(f.Fd()))
}

// Counter tracks how many of a fixed number of checks have finished.
// It is safe for concurrent use by the goroutines performing the checks.
type Counter struct {
	mu        sync.Mutex
	output    io.Writer
	total     int
	done      int
	failed    int
	updates   int
	isTTY     bool
	lastPrint time.Time
}

// NewCounter creates a counter for total checks that reports to output.
func NewCounter(output io.Writer, total int) *Counter {
	return &Counter{
		output: output,
		total:  total,
		isTTY:  IsTerminal(output),
	}
}

// Outcome is the result of one finished check.
type Outcome int

const (
	UpToDate Outcome = iota
	UpdateAvailable
	Failed
)

// Done records a finished check and redraws the status line.
func (c *Counter) Done(o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	switch o {
	case UpdateAvailable:
		c.updates++
	case Failed:
		c.failed++
	}
	c.print(c.done == c.total)
}

// Counts returns the number of finished, update-available and failed checks.
func (c *Counter) Counts() (done, updates, failed int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done, c.updates, c.failed
}

// Finish clears the status line.
func (c *Counter) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isTTY {
		fmt.Fprintf(c.output, "\r%s\r", strings.Repeat(" ", lineWidth))
	}
}

func (c *Counter) print(force bool) {
	if !c.isTTY {
		return
	}
	// Max 10 redraws per second to avoid flicker.
	now := time.Now()
	if !force && now.Sub(c.lastPrint) < 100*time.Millisecond {
		return
	}
	c.lastPrint = now

	_, _ = fmt.Fprint(c.output, pad("\r"+c.line()))
}

// line renders the status without terminal control characters.
func (c *Counter) line() string {
	const barWidth = 20
	filled := 0
	if c.total > 0 {
		filled = c.done * barWidth / c.total
	}
	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}

	s := fmt.Sprintf("   [%s] %d/%d checked", bar, c.done, c.total)
	if c.updates > 0 {
		s += fmt.Sprintf(", %d %s", c.updates, plural(c.updates, "update", "updates"))
	}
	if c.failed > 0 {
		s += fmt.Sprintf(", %d failed", c.failed)
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func pad(line string) string {
	if len(line) < lineWidth {
		line += strings.Repeat(" ", lineWidth-len(line))
	}
	return line
}
