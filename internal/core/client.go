package core

import (
	"io"
	"net"
	"time"

	"github.com/vovakirdan/wirebattle-server/internal/frame"
)

// Handle identifies a connection for its whole lifetime. Handles are never reused.
type Handle uint64

// NoHandle is the zero handle; it never refers to a client.
const NoHandle Handle = 0

// Conn is the stream a client is attached to. net.Conn satisfies it.
type Conn interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
	SetWriteDeadline(t time.Time) error
}

// Client is a connected battle participant. Only the hub goroutine touches it.
type Client struct {
	Handle     Handle
	RemoteAddr string
	Name       string

	// Opponent and LastOpponent are weak references resolved through the registry.
	Opponent     Handle
	LastOpponent Handle

	TurnActive bool
	Hitpoints  int
	Powermoves int
	Killmoves  int
	Idle       bool
	MatchID    string

	conn         Conn
	framer       *frame.Framer
	speaking     bool
	turns        int
	connectedAt  time.Time
	matchStarted time.Time
}

// Named reports whether the client has completed login.
func (c *Client) Named() bool {
	return c.Name != ""
}

// InMatch reports whether the client currently has an opponent.
func (c *Client) InMatch() bool {
	return c.Opponent != NoHandle
}

func (c *Client) resetMatch() {
	c.Opponent = NoHandle
	c.TurnActive = false
	c.MatchID = ""
	c.speaking = false
	c.turns = 0
	c.Idle = true
}
