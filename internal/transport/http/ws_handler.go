package http

import (
	"context"
	"net"
	stdhttp "net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// WSHandler upgrades HTTP connections and hands them to the hub as plain
// line streams. Each server write becomes one text message.
type WSHandler struct {
	hub     Battle
	limiter *rateLimiter
	log     *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub Battle, limiter *rateLimiter, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, limiter: limiter, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	if !h.limiter.allow() {
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("ws upgrade rate limited")
		stdhttp.Error(w, "too many connections", stdhttp.StatusTooManyRequests)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := newWSConn(websocket.NetConn(ctx, ws, websocket.MessageText), r.RemoteAddr)
	if !h.hub.Accept(ctx, conn) {
		ws.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	// The hub owns conn now; stay in the handler until it lets go.
	select {
	case <-conn.closed:
	case <-ctx.Done():
	}
}

// wsConn reports when the hub closes it and carries the HTTP peer address.
type wsConn struct {
	net.Conn
	remote wsAddr
	once   sync.Once
	closed chan struct{}
}

func newWSConn(c net.Conn, remote string) *wsConn {
	return &wsConn{Conn: c, remote: wsAddr(remote), closed: make(chan struct{})}
}

func (c *wsConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() { close(c.closed) })
	return err
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.remote
}

type wsAddr string

func (a wsAddr) Network() string { return "websocket" }
func (a wsAddr) String() string  { return string(a) }
