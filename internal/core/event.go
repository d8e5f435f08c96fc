package core

import "time"

// Outcome describes how a match ended.
type Outcome string

const (
	// OutcomeDefeat means the loser's hitpoints reached zero.
	OutcomeDefeat Outcome = "defeat"
	// OutcomeForfeit means the loser disconnected mid-match.
	OutcomeForfeit Outcome = "forfeit"
)

// MatchRecord is emitted once per finished match.
type MatchRecord struct {
	ID        string    `json:"id"`
	Winner    string    `json:"winner"`
	Loser     string    `json:"loser"`
	Outcome   Outcome   `json:"outcome"`
	Turns     int       `json:"turns"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Stats is a point-in-time view of the hub, safe to read from any goroutine.
type Stats struct {
	Online  int `json:"online"`
	Named   int `json:"named"`
	Idle    int `json:"idle"`
	InMatch int `json:"in_match"`
	Matches int `json:"matches_finished"`
}
