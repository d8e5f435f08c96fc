package tcp_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirebattle-server/internal/core"
	"github.com/vovakirdan/wirebattle-server/internal/transport/tcp"
)

type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(s string) {
	c.t.Helper()
	_, err := c.conn.Write([]byte(s))
	require.NoError(c.t, err)
}

// waitFor reads lines until one contains want.
func (c *testClient) waitFor(want string) string {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		line, err := c.r.ReadString('\n')
		if strings.Contains(line, want) {
			return line
		}
		if err != nil {
			c.t.Fatalf("waiting for %q: %v", want, err)
		}
	}
}

func startServer(t *testing.T) (string, *core.Hub) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := core.NewHub(core.Options{PollTimeout: 50 * time.Millisecond}, nil)
	go hub.Run(ctx)

	ln, err := tcp.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() {
		served <- tcp.Serve(ctx, ln, func(ctx context.Context, conn net.Conn) bool {
			return hub.Accept(ctx, conn)
		}, nil)
	}()

	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		assert.NoError(t, <-served)
	})
	return ln.Addr().String(), hub
}

func TestEndToEndMatchFormation(t *testing.T) {
	addr, hub := startServer(t)

	bob := dial(t, addr)
	bob.waitFor("What is your name?")
	bob.send("Bob\n")
	bob.waitFor("**Bob joined the area.**")
	bob.waitFor("Awaiting opponent...")

	carol := dial(t, addr)
	carol.waitFor("What is your name?")
	// CRLF split across two writes.
	carol.send("Carol\r")
	carol.send("\n")

	bob.waitFor("**Carol joined the area.**")
	formed := "Player (Carol) will begin a match with player (Bob)"
	carol.waitFor(formed)
	bob.waitFor(formed)

	require.Eventually(t, func() bool {
		return hub.Stats().InMatch == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEndToEndDisconnectForfeit(t *testing.T) {
	addr, hub := startServer(t)

	bob := dial(t, addr)
	bob.waitFor("What is your name?")
	bob.send("Bob\r\n")
	bob.waitFor("Awaiting opponent...")

	carol := dial(t, addr)
	carol.waitFor("What is your name?")
	carol.send("Carol\r\n")
	bob.waitFor("will begin a match with")

	require.NoError(t, carol.conn.Close())

	bob.waitFor("--Carol dropped. You win!")
	bob.waitFor("**Carol leaves the area.**")

	require.Eventually(t, func() bool {
		s := hub.Stats()
		return s.Online == 1 && s.Idle == 1 && s.Matches == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ln, err := tcp.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() {
		served <- tcp.Serve(ctx, ln, func(context.Context, net.Conn) bool { return false }, nil)
	}()

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeClosesRefusedConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ln, err := tcp.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = tcp.Serve(ctx, ln, func(context.Context, net.Conn) bool { return false }, nil)
	}()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), 2*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestListenFailsOnBusyPort(t *testing.T) {
	ln, err := tcp.Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = tcp.Listen(context.Background(), ln.Addr().String())
	assert.Error(t, err)
}
