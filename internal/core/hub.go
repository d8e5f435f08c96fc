package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirebattle-server/internal/frame"
	"github.com/vovakirdan/wirebattle-server/internal/proto"
)

// Options tunes the hub.
type Options struct {
	// PollTimeout bounds how long the loop waits without any readiness event.
	PollTimeout time.Duration
	// WriteTimeout is the deadline applied to every write.
	WriteTimeout time.Duration
	// MaxLineLength is the per-connection framing buffer size.
	MaxLineLength int
	// Dice drives matchmaking and combat. Defaults to NewDice().
	Dice Dice
	// Results receives one record per finished match. May be nil.
	Results chan<- MatchRecord
}

// Hub is the event loop. A single goroutine (Run) owns the registry and every
// client; other goroutines only hand it connections and read events.
type Hub struct {
	opts     Options
	log      *zerolog.Logger
	dice     Dice
	registry *Registry
	accepts  chan Conn
	reads    chan readEvent
	done     chan struct{}
	doomed   map[Handle]error
	finished int
	stats    atomic.Pointer[Stats]
}

type readEvent struct {
	handle Handle
	data   []byte
	err    error
}

// NewHub creates a hub. Call Run to start serving.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 10 * time.Second
	}
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = frame.DefaultMaxLine
	}
	if opts.Dice == nil {
		opts.Dice = NewDice()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	h := &Hub{
		opts:     opts,
		log:      logger,
		dice:     opts.Dice,
		registry: NewRegistry(opts.MaxLineLength),
		accepts:  make(chan Conn),
		reads:    make(chan readEvent, 64),
		done:     make(chan struct{}),
		doomed:   make(map[Handle]error),
	}
	h.stats.Store(&Stats{})
	return h
}

// Accept hands conn to the event loop. It reports false when the hub is not
// running anymore; the caller then owns (and should close) conn.
func (h *Hub) Accept(ctx context.Context, conn Conn) bool {
	select {
	case h.accepts <- conn:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Stats returns the snapshot published after the latest loop iteration.
func (h *Hub) Stats() Stats {
	return *h.stats.Load()
}

// Done is closed once Run has returned and every client has been closed.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run serves until ctx is cancelled. Each readiness event is handled to
// completion before the loop waits again.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	timer := time.NewTimer(h.opts.PollTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case conn := <-h.accepts:
			h.register(ctx, conn)
		case ev := <-h.reads:
			h.handleRead(ev)
		case <-timer.C:
			h.log.Debug().Int("clients", h.registry.Len()).Msg("poll timeout")
		}

		h.reap()
		h.publishStats()
		timer.Reset(h.opts.PollTimeout)
	}
}

func (h *Hub) register(ctx context.Context, conn Conn) {
	c := h.admit(conn)
	go h.readLoop(ctx, c.Handle, conn)
}

// admit registers conn and sends the login prompt.
func (h *Hub) admit(conn Conn) *Client {
	c := h.registry.Insert(conn)
	h.log.Info().
		Uint64("handle", uint64(c.Handle)).
		Str("remote", c.RemoteAddr).
		Msg("client connected")
	h.send(c, proto.NamePrompt)
	return c
}

// readLoop is the only code that reads from conn. It never touches client state.
func (h *Hub) readLoop(ctx context.Context, handle Handle, conn Conn) {
	buf := make([]byte, h.opts.MaxLineLength)
	for {
		n, err := conn.Read(buf)
		var data []byte
		if n > 0 {
			data = append([]byte(nil), buf[:n]...)
		}

		select {
		case h.reads <- readEvent{handle: handle, data: data, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (h *Hub) handleRead(ev readEvent) {
	c := h.registry.Find(ev.handle)
	if c == nil || h.isDoomed(c) {
		return
	}

	res := c.framer.Feed(ev.data, ev.err)
	for {
		switch res.Status {
		case frame.NeedMore:
			return
		case frame.Overflow:
			h.send(c, proto.LineTooLong)
			h.doom(c, ErrLineOverflow)
			return
		case frame.Closed:
			reason := ErrPeerClosed
			if res.Err != nil && !errors.Is(res.Err, io.EOF) {
				reason = fmt.Errorf("read: %w", res.Err)
			}
			h.doom(c, reason)
			return
		case frame.Line:
			h.route(c, res.Text)
		}

		if h.isDoomed(c) || h.registry.Find(c.Handle) == nil {
			return
		}
		res = c.framer.Next()
	}
}

func (h *Hub) route(c *Client, line string) {
	switch {
	case !c.Named():
		h.login(c, line)
	case c.InMatch():
		h.handleMove(c, line)
	default:
		h.log.Debug().Str("name", c.Name).Msg("ignoring input from idle client")
	}
}

func (h *Hub) login(c *Client, line string) {
	name := strings.TrimSpace(line)
	if name == "" {
		h.send(c, proto.BlankNameRetry)
		h.send(c, proto.NamePrompt)
		return
	}

	c.Name = name
	c.Idle = true
	h.log.Info().Uint64("handle", uint64(c.Handle)).Str("name", name).Msg("client logged in")

	h.broadcast(proto.Joined(name))
	h.send(c, proto.AwaitOpponent)
	h.tryMatch(c)
}

// send writes msg to c. A failure dooms c; the write is never retried.
func (h *Hub) send(c *Client, msg string) bool {
	if h.isDoomed(c) {
		return false
	}
	if h.opts.WriteTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
	}
	if _, err := io.WriteString(c.conn, msg); err != nil {
		h.log.Warn().Err(err).Uint64("handle", uint64(c.Handle)).Str("name", c.Name).Msg("write failed")
		h.doom(c, fmt.Errorf("write: %w", err))
		return false
	}
	return true
}

// broadcast delivers msg to every registered client. Failed recipients are
// doomed and removed after the current dispatch; delivery to others continues.
func (h *Hub) broadcast(msg string) {
	for _, c := range h.registry.All() {
		h.send(c, msg)
	}
}

func (h *Hub) doom(c *Client, reason error) {
	if _, ok := h.doomed[c.Handle]; ok {
		return
	}
	h.doomed[c.Handle] = reason
}

func (h *Hub) isDoomed(c *Client) bool {
	_, ok := h.doomed[c.Handle]
	return ok
}

// reap disconnects doomed clients in registry order. Disconnect notices can
// doom further clients, so it repeats until nothing is pending.
func (h *Hub) reap() {
	for len(h.doomed) > 0 {
		var victim *Client
		for _, c := range h.registry.All() {
			if h.isDoomed(c) {
				victim = c
				break
			}
		}
		if victim == nil {
			clear(h.doomed)
			return
		}
		h.disconnect(victim, h.doomed[victim.Handle])
	}
}

func (h *Hub) disconnect(c *Client, reason error) {
	h.registry.Remove(c.Handle)
	delete(h.doomed, c.Handle)
	if err := c.conn.Close(); err != nil {
		h.log.Debug().Err(err).Uint64("handle", uint64(c.Handle)).Msg("close failed")
	}

	h.log.Info().
		Uint64("handle", uint64(c.Handle)).
		Str("name", c.Name).
		Str("reason", reason.Error()).
		Dur("connected_for", time.Since(c.connectedAt)).
		Msg("client disconnected")

	survivor := h.registry.Find(c.Opponent)
	if survivor != nil && survivor.Opponent == c.Handle {
		rec := h.endMatch(survivor, c, OutcomeForfeit)
		h.send(survivor, proto.Dropped(c.Name))
		h.send(survivor, proto.AwaitNext)
		h.emit(rec)
	} else {
		survivor = nil
	}

	if c.Named() {
		h.broadcast(proto.Left(c.Name))
	}
	if survivor != nil {
		h.tryMatch(survivor)
	}
}

func (h *Hub) emit(rec MatchRecord) {
	h.finished++
	if h.opts.Results == nil {
		return
	}
	select {
	case h.opts.Results <- rec:
	default:
		h.log.Warn().Str("match_id", rec.ID).Msg("match record dropped, results buffer full")
	}
}

func (h *Hub) publishStats() {
	s := Stats{Matches: h.finished}
	for _, c := range h.registry.All() {
		s.Online++
		if !c.Named() {
			continue
		}
		s.Named++
		switch {
		case c.InMatch():
			s.InMatch++
		case c.Idle:
			s.Idle++
		}
	}
	h.stats.Store(&s)
}

func (h *Hub) shutdown() {
	clients := h.registry.All()
	for _, c := range clients {
		h.send(c, proto.ServerShutdown)
		_ = c.conn.Close()
		h.registry.Remove(c.Handle)
	}
	clear(h.doomed)
	h.publishStats()
	h.log.Info().Int("clients", len(clients)).Msg("hub stopped")
}
