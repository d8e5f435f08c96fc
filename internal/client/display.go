// Package client implements the terminal side of the battle protocol.
package client

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Kind classifies a server line for colouring.
type Kind int

const (
	KindPlain Kind = iota
	KindArea
	KindMatch
	KindAttack
	KindSpeech
	KindWin
	KindLose
	KindWarning
)

// Classify picks the colour class of one server line.
func Classify(line string) Kind {
	switch {
	case strings.HasSuffix(line, "You win!"):
		return KindWin
	case strings.HasPrefix(line, "You are no match"):
		return KindLose
	case strings.Contains(line, " will begin a match with "):
		return KindMatch
	case strings.HasPrefix(line, "**"):
		return KindArea
	case strings.Contains(line, " says: "):
		return KindSpeech
	case strings.HasSuffix(line, "damage!"),
		strings.HasSuffix(line, "with a powermove!"),
		strings.Contains(line, "'s killmove missed "):
		return KindAttack
	case line == "Invalid move.",
		strings.HasSuffix(line, "turn. Please wait."),
		strings.HasPrefix(line, "Names cannot"):
		return KindWarning
	default:
		return KindPlain
	}
}

// Display renders the server stream line by line. Complete lines are
// coloured by Kind; a trailing prompt such as "Speak: " is flushed as is.
type Display struct {
	mu      sync.Mutex
	out     io.Writer
	pending []byte
	colors  map[Kind]*color.Color
}

// NewDisplay writes rendered lines to out.
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out: out,
		colors: map[Kind]*color.Color{
			KindArea:    color.New(color.FgCyan),
			KindMatch:   color.New(color.FgYellow, color.Bold),
			KindAttack:  color.New(color.FgRed),
			KindSpeech:  color.New(color.FgMagenta),
			KindWin:     color.New(color.FgGreen, color.Bold),
			KindLose:    color.New(color.FgRed, color.Bold),
			KindWarning: color.New(color.FgYellow),
		},
	}
}

// Write implements io.Writer so the display can sit behind io.Copy.
func (d *Display) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = append(d.pending, p...)
	for {
		i := bytes.IndexByte(d.pending, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(d.pending[:i]), "\r")
		d.pending = d.pending[i+1:]
		if err := d.writeLine(line); err != nil {
			return 0, err
		}
	}

	if bytes.HasSuffix(d.pending, []byte(": ")) {
		prompt := strings.TrimLeft(string(d.pending), "\r")
		d.pending = d.pending[:0]
		if _, err := io.WriteString(d.out, prompt); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (d *Display) writeLine(line string) error {
	if c, ok := d.colors[Classify(line)]; ok {
		_, err := c.Fprintln(d.out, line)
		return err
	}
	_, err := io.WriteString(d.out, line+"\n")
	return err
}
