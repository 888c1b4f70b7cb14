// Package clipboard places text on the user's clipboard through the terminal
// using the OSC 52 escape sequence, which also works over SSH.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

var (
	// ErrEmpty is returned when there is nothing to copy.
	ErrEmpty = errors.New("clipboard: nothing to copy")
	// ErrTooLarge is returned when the payload exceeds the configured limit.
	ErrTooLarge = errors.New("clipboard: text exceeds terminal limit")
)

// DefaultLimit is the largest payload many terminals accept in one sequence.
const DefaultLimit = 100_000

// Writer places text on the clipboard.
type Writer interface {
	WriteText(text string) error
}

// WriterFunc adapts a function to Writer.
type WriterFunc func(text string) error

// WriteText calls f(text).
func (f WriterFunc) WriteText(text string) error { return f(text) }

// OSC52 writes clipboard sequences to a terminal stream.
type OSC52 struct {
	out    io.Writer
	limit  int
	getenv func(string) string
}

// NewOSC52 returns a writer emitting to out, which should be the terminal.
func NewOSC52(out io.Writer) *OSC52 {
	return &OSC52{out: out, limit: DefaultLimit, getenv: os.Getenv}
}

// WriteText emits the sequence, wrapped for tmux or screen when running
// inside one of them.
func (c *OSC52) WriteText(text string) error {
	if text == "" {
		return ErrEmpty
	}
	if c.limit > 0 && len(text) > c.limit {
		return ErrTooLarge
	}

	seq := osc52.New(text)
	switch {
	case c.getenv("TMUX") != "":
		seq = seq.Tmux()
	case c.getenv("STY") != "" || strings.HasPrefix(c.getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(c.out); err != nil {
		return fmt.Errorf("clipboard: write sequence: %w", err)
	}
	return nil
}
