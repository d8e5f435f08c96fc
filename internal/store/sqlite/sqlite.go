package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirebattle-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id         TEXT PRIMARY KEY,
	winner     TEXT NOT NULL,
	loser      TEXT NOT NULL,
	outcome    TEXT NOT NULL,
	turns      INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL,
	ended_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_matches_ended ON matches(ended_at DESC);
CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner);
CREATE INDEX IF NOT EXISTS idx_matches_loser ON matches(loser);
`

// SQLiteStore implements store.MatchStore for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New opens the database at dbPath and applies the schema.
// ":memory:" keeps the ledger for the lifetime of the process only.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; an in-memory DB requires it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMatch appends a finished match.
func (s *SQLiteStore) SaveMatch(ctx context.Context, m *store.Match) error {
	query := `
		INSERT INTO matches (id, winner, loser, outcome, turns, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Winner, m.Loser, m.Outcome, m.Turns, m.StartedAt.UTC(), m.EndedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

// RecentMatches returns up to limit matches, newest first.
func (s *SQLiteStore) RecentMatches(ctx context.Context, limit int) ([]*store.Match, error) {
	query := `
		SELECT id, winner, loser, outcome, turns, started_at, ended_at
		FROM matches
		ORDER BY ended_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*store.Match, 0, limit)
	for rows.Next() {
		var m store.Match
		if err := rows.Scan(&m.ID, &m.Winner, &m.Loser, &m.Outcome, &m.Turns, &m.StartedAt, &m.EndedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// PlayerRecord returns win/loss counts for a display name.
func (s *SQLiteStore) PlayerRecord(ctx context.Context, name string) (*store.PlayerRecord, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN loser = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN loser = ? AND outcome = ? THEN 1 ELSE 0 END), 0)
		FROM matches
		WHERE winner = ? OR loser = ?
	`
	rec := store.PlayerRecord{Name: name}
	err := s.db.QueryRowContext(ctx, query, name, name, name, store.OutcomeForfeit, name, name).
		Scan(&rec.Wins, &rec.Losses, &rec.Forfeits)
	if err != nil {
		return nil, fmt.Errorf("query player record: %w", err)
	}
	if rec.Wins == 0 && rec.Losses == 0 {
		return nil, fmt.Errorf("player %q: %w", name, store.ErrNotFound)
	}
	return &rec, nil
}

// Totals summarizes all recorded matches.
func (s *SQLiteStore) Totals(ctx context.Context) (store.Totals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
		FROM matches
	`
	var t store.Totals
	if err := s.db.QueryRowContext(ctx, query, store.OutcomeForfeit).Scan(&t.Matches, &t.Forfeits); err != nil {
		return t, fmt.Errorf("query totals: %w", err)
	}
	return t, nil
}
