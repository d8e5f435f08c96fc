package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const dialTimeout = 5 * time.Second

// Dial connects to a battle server. ws:// and wss:// addresses go through the
// WebSocket gateway; anything else is a plain TCP host:port.
func Dial(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()

		ws, _, err := websocket.Dial(dialCtx, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, err)
		}
		return websocket.NetConn(ctx, ws, websocket.MessageText), nil
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}
