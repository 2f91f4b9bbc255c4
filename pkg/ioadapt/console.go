package ioadapt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/storyloom/storyloom/pkg/lang"
)

// Console adapts the controlling terminal for a single-player session.
// A background goroutine reads stdin lines into the input buffer; the
// driver's loop consumes them.
type Console struct {
	lineBuffer

	in    io.Reader
	ansi  bool
	delay time.Duration

	wmu       sync.Mutex
	out       io.Writer
	destroyed bool
}

// NewConsole wraps stdin/stdout. ANSI styling is enabled when stdout
// looks like a terminal.
func NewConsole() *Console {
	ansi := false
	if fi, err := os.Stdout.Stat(); err == nil {
		ansi = fi.Mode()&os.ModeCharDevice != 0
	}
	return NewConsoleOn(os.Stdin, os.Stdout, ansi)
}

// NewConsoleOn wraps arbitrary streams, for tests and for driving a
// session from a script file.
func NewConsoleOn(in io.Reader, out io.Writer, ansi bool) *Console {
	c := &Console{lineBuffer: newLineBuffer(), in: in, out: out, ansi: ansi}
	go c.readLoop()
	return c
}

// SetDelay sets a pause after each output paragraph, the classic
// teletype pacing of terminal fiction.
func (c *Console) SetDelay(d time.Duration) { c.delay = d }

func (c *Console) readLoop() {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		c.push(scanner.Text())
	}
}

func (c *Console) render(s string) string {
	if c.ansi {
		return lang.ApplyAnsiStyles(s)
	}
	return lang.StripStyles(s)
}

// Output prints one region of paragraphs separated by blank lines.
func (c *Console) Output(paragraphs []string) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.destroyed {
		return
	}
	for i, p := range paragraphs {
		if i > 0 {
			fmt.Fprintln(c.out)
		}
		fmt.Fprintln(c.out, c.render(p))
		if c.delay > 0 {
			time.Sleep(c.delay)
		}
	}
}

// WriteInputPrompt draws the turn prompt without a trailing newline.
func (c *Console) WriteInputPrompt() {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.destroyed {
		return
	}
	fmt.Fprint(c.out, "\n>> ")
}

// ClearScreen clears an ANSI terminal; on dumb terminals it just
// scrolls the old text away.
func (c *Console) ClearScreen() {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.destroyed {
		return
	}
	if c.ansi {
		fmt.Fprint(c.out, "\x1b[2J\x1b[H")
	} else {
		fmt.Fprint(c.out, "\n\n\n\n")
	}
}

// Destroy stops writing. Stdin is left open; the read goroutine exits
// with the process.
func (c *Console) Destroy() {
	c.wmu.Lock()
	c.destroyed = true
	c.wmu.Unlock()
}
