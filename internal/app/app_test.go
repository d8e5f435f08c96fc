package app

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirebattle-server/internal/config"
)

// zeroDice always rolls the lowest value: the newer client starts, every
// roll is minimal and every killmove lands.
type zeroDice struct{}

func (zeroDice) Intn(int) int { return 0 }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.AdminAddr = "127.0.0.1:0"
	cfg.PollTimeout = 50 * time.Millisecond
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func startApp(t *testing.T, cfg config.Config) *App {
	t.Helper()

	logger := zerolog.Nop()
	ctx, cancel := context.WithCancel(context.Background())

	a, err := New(ctx, cfg, &logger, Options{Dice: zeroDice{}})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("app did not stop")
		}
	})
	return a
}

type player struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func connect(t *testing.T, addr, name string) *player {
	t.Helper()

	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	p := &player{t: t, conn: conn, r: bufio.NewReader(conn)}
	p.waitFor("What is your name?")
	p.send(name + "\r\n")
	p.waitFor("joined the area.")
	return p
}

func (p *player) send(s string) {
	p.t.Helper()
	_, err := p.conn.Write([]byte(s))
	require.NoError(p.t, err)
}

func (p *player) waitFor(want string) {
	p.t.Helper()

	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		line, err := p.r.ReadString('\n')
		if strings.Contains(line, want) {
			return
		}
		if err != nil {
			p.t.Fatalf("waiting for %q: %v", want, err)
		}
	}
}

func TestMatchIsRecordedAndServed(t *testing.T) {
	a := startApp(t, testConfig())

	bob := connect(t, a.BattleAddr(), "Bob")
	carol := connect(t, a.BattleAddr(), "Carol")

	carol.waitFor("(k)illmove")
	carol.send("k\n")
	carol.waitFor("Bob gives up. You win!")
	bob.waitFor("You are no match for Carol. You scurry away...")

	var matches []map[string]any
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + a.AdminAddr() + "/api/matches")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
			return false
		}
		return len(matches) == 1
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, "Carol", matches[0]["winner"])
	assert.Equal(t, "Bob", matches[0]["loser"])
	assert.Equal(t, "defeat", matches[0]["outcome"])
}

func TestHealthAndStats(t *testing.T) {
	a := startApp(t, testConfig())
	connect(t, a.BattleAddr(), "Alice")

	resp, err := http.Get("http://" + a.AdminAddr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + a.AdminAddr() + "/api/stats")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var stats map[string]int
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return false
		}
		return stats["online"] == 1 && stats["idle"] == 1
	}, 3*time.Second, 20*time.Millisecond)
}

func TestAdminDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.AdminAddr = ""
	cfg.WebSocket = false

	a := startApp(t, cfg)
	assert.Empty(t, a.AdminAddr())
	connect(t, a.BattleAddr(), "Solo")
}

func TestNewFailsWhenPortBusy(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	_, port, err := net.SplitHostPort(busy.Addr().String())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Port, err = strconv.Atoi(port)
	require.NoError(t, err)

	logger := zerolog.Nop()
	_, err = New(context.Background(), cfg, &logger, Options{})
	assert.Error(t, err)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxLineLength = 1

	logger := zerolog.Nop()
	_, err := New(context.Background(), cfg, &logger, Options{})
	assert.ErrorContains(t, err, "invalid config")
}
