// Package tcp runs the battle listener and hands accepted connections to the hub.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
)

const maxAcceptBackoff = time.Second

// AcceptFunc takes ownership of conn. Returning false leaves conn with the
// caller, which closes it.
type AcceptFunc func(ctx context.Context, conn net.Conn) bool

// Listen binds the battle port. A failure here is fatal for the process.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// Serve accepts connections until ctx is cancelled, then closes ln.
// Transient accept errors are logged and retried with backoff.
func Serve(ctx context.Context, ln net.Listener, accept AcceptFunc, logger *zerolog.Logger) error {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	logger.Info().Str("addr", ln.Addr().String()).Msg("battle listener ready")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				backoff = nextBackoff(backoff)
				logger.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")
				select {
				case <-time.After(backoff):
					continue
				case <-ctx.Done():
					return nil
				}
			}
			return fmt.Errorf("accept: %w", err)
		}
		backoff = 0

		if !accept(ctx, conn) {
			logger.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection refused, hub stopped")
			_ = conn.Close()
		}
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	d *= 2
	if d > maxAcceptBackoff {
		d = maxAcceptBackoff
	}
	return d
}
