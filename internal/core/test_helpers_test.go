package core

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var errBrokenPipe = errors.New("broken pipe")

// fakeConn records everything the hub writes and can be told to fail writes.
type fakeConn struct {
	out        bytes.Buffer
	failWrites bool
	closed     bool
	port       int
	deadline   time.Time
}

func newFakeConn(port int) *fakeConn {
	return &fakeConn{port: port}
}

func (f *fakeConn) Read([]byte) (int, error) { return 0, io.EOF }

func (f *fakeConn) Write(p []byte) (int, error) {
	if f.failWrites || f.closed {
		return 0, errBrokenPipe
	}
	return f.out.Write(p)
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func (f *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: f.port}
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	f.deadline = t
	return nil
}

// take returns and clears everything written so far.
func (f *fakeConn) take() string {
	s := f.out.String()
	f.out.Reset()
	return s
}

// scriptedDice replays fixed values; values beyond n-1 are clamped.
type scriptedDice struct {
	values []int
}

func (d *scriptedDice) push(values ...int) {
	d.values = append(d.values, values...)
}

func (d *scriptedDice) Intn(n int) int {
	if len(d.values) == 0 {
		return 0
	}
	v := d.values[0]
	d.values = d.values[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func newTestHub(t *testing.T) (*Hub, *scriptedDice, chan MatchRecord) {
	t.Helper()

	logger := zerolog.Nop()
	dice := &scriptedDice{}
	results := make(chan MatchRecord, 8)
	h := NewHub(Options{
		PollTimeout:   time.Second,
		MaxLineLength: 64,
		Dice:          dice,
		Results:       results,
	}, &logger)
	return h, dice, results
}

// connect admits a fresh fake connection and discards the login prompt.
func connect(t *testing.T, h *Hub) (*Client, *fakeConn) {
	t.Helper()

	conn := newFakeConn(40000 + h.registry.Len())
	c := h.admit(conn)
	require.Equal(t, "What is your name?\r\n", conn.take())
	return c, conn
}

// feed delivers raw bytes from c as one read event and completes the dispatch.
func feed(h *Hub, c *Client, data string) {
	h.handleRead(readEvent{handle: c.Handle, data: []byte(data)})
	h.reap()
	h.publishStats()
}

func join(t *testing.T, h *Hub, name string) (*Client, *fakeConn) {
	t.Helper()

	c, conn := connect(t, h)
	feed(h, c, name+"\r\n")
	require.Equal(t, name, c.Name)
	return c, conn
}

// requireSymmetric checks the opponent invariant over the whole registry.
func requireSymmetric(t *testing.T, h *Hub) {
	t.Helper()

	for _, c := range h.registry.All() {
		if !c.InMatch() {
			continue
		}
		o := h.registry.Find(c.Opponent)
		require.NotNil(t, o, "%s points at a missing opponent", c.Name)
		require.Equal(t, c.Handle, o.Opponent, "%s -> %s is not symmetric", c.Name, o.Name)
		require.NotEqual(t, c.TurnActive, o.TurnActive, "exactly one of %s/%s must be active", c.Name, o.Name)
	}
}

func countContaining(outputs []string, needle string) int {
	n := 0
	for _, out := range outputs {
		if strings.Contains(out, needle) {
			n++
		}
	}
	return n
}
