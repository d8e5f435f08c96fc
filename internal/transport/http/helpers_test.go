package http

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirebattle-server/internal/config"
	"github.com/vovakirdan/wirebattle-server/internal/core"
	"github.com/vovakirdan/wirebattle-server/internal/store"
	"github.com/vovakirdan/wirebattle-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite ledger.
func createTestStore(t *testing.T) store.MatchStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedMatch(t *testing.T, st store.MatchStore, id, winner, loser, outcome string, ended time.Time) {
	t.Helper()

	m := &store.Match{
		ID:        id,
		Winner:    winner,
		Loser:     loser,
		Outcome:   outcome,
		Turns:     3,
		StartedAt: ended.Add(-time.Minute),
		EndedAt:   ended,
	}
	if err := st.SaveMatch(context.Background(), m); err != nil {
		t.Fatalf("failed to seed match: %v", err)
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.AdminAddr = ":0"
	cfg.WSRateLimit = 0
	return cfg
}

func disabledLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeBattle serves fixed stats and refuses every connection.
type fakeBattle struct {
	stats core.Stats
}

func (f *fakeBattle) Accept(context.Context, core.Conn) bool { return false }
func (f *fakeBattle) Stats() core.Stats                      { return f.stats }
