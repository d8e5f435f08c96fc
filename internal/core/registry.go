package core

import (
	"time"

	"github.com/vovakirdan/wirebattle-server/internal/frame"
)

// Registry owns every connected client, keyed by handle.
// Iteration order is most-recently-registered first.
type Registry struct {
	clients map[Handle]*Client
	order   []Handle
	last    Handle
	maxLine int
}

// NewRegistry creates an empty registry whose clients frame lines of at most maxLine bytes.
func NewRegistry(maxLine int) *Registry {
	return &Registry{
		clients: make(map[Handle]*Client),
		maxLine: maxLine,
	}
}

// Insert registers a new, unnamed client for conn.
func (r *Registry) Insert(conn Conn) *Client {
	r.last++
	c := &Client{
		Handle:      r.last,
		conn:        conn,
		framer:      frame.New(r.maxLine),
		connectedAt: time.Now(),
	}
	if addr := conn.RemoteAddr(); addr != nil {
		c.RemoteAddr = addr.String()
	}

	r.clients[c.Handle] = c
	r.order = append([]Handle{c.Handle}, r.order...)
	return c
}

// Find returns the client for h, or nil.
func (r *Registry) Find(h Handle) *Client {
	if h == NoHandle {
		return nil
	}
	return r.clients[h]
}

// Remove deletes the client for h. Removing an unknown handle is a no-op and returns false.
func (r *Registry) Remove(h Handle) bool {
	if _, ok := r.clients[h]; !ok {
		return false
	}
	delete(r.clients, h)
	for i, other := range r.order {
		if other == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// All returns a snapshot of the registered clients. Later inserts and removals
// do not affect the returned slice.
func (r *Registry) All() []*Client {
	out := make([]*Client, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, r.clients[h])
	}
	return out
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	return len(r.clients)
}
