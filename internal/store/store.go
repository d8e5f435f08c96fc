package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Outcome values stored with a match.
const (
	OutcomeDefeat  = "defeat"
	OutcomeForfeit = "forfeit"
)

// Match is a finished match as kept in the ledger.
type Match struct {
	ID        string
	Winner    string
	Loser     string
	Outcome   string
	Turns     int
	StartedAt time.Time
	EndedAt   time.Time
}

// PlayerRecord aggregates results for one display name.
type PlayerRecord struct {
	Name     string
	Wins     int
	Losses   int
	Forfeits int
}

// Totals summarizes the whole ledger.
type Totals struct {
	Matches  int
	Forfeits int
}

// MatchStore is the write-mostly ledger of finished matches. Game state never
// reads from it.
type MatchStore interface {
	// SaveMatch appends a finished match.
	SaveMatch(ctx context.Context, m *Match) error

	// RecentMatches returns up to limit matches, newest first.
	RecentMatches(ctx context.Context, limit int) ([]*Match, error)

	// PlayerRecord returns win/loss counts for a display name.
	// Returns ErrNotFound if the name never finished a match.
	PlayerRecord(ctx context.Context, name string) (*PlayerRecord, error)

	// Totals summarizes all recorded matches.
	Totals(ctx context.Context) (Totals, error)

	// Close closes the underlying database connection.
	Close() error
}
