package http

import (
	"time"

	"github.com/vovakirdan/wirebattle-server/internal/store"
)

// MatchResponse is the JSON form of a recorded match.
type MatchResponse struct {
	ID        string    `json:"id"`
	Winner    string    `json:"winner"`
	Loser     string    `json:"loser"`
	Outcome   string    `json:"outcome"`
	Turns     int       `json:"turns"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// PlayerResponse is the JSON form of a player's record.
type PlayerResponse struct {
	Name     string `json:"name"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Forfeits int    `json:"forfeits"`
}

// StatsResponse combines live hub counters with ledger totals.
type StatsResponse struct {
	Online          int `json:"online"`
	Named           int `json:"named"`
	Idle            int `json:"idle"`
	InMatch         int `json:"in_match"`
	MatchesFinished int `json:"matches_finished"`
	MatchesRecorded int `json:"matches_recorded"`
	Forfeits        int `json:"forfeits"`
}

func matchFromStore(m *store.Match) MatchResponse {
	return MatchResponse{
		ID:        m.ID,
		Winner:    m.Winner,
		Loser:     m.Loser,
		Outcome:   m.Outcome,
		Turns:     m.Turns,
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
	}
}

func matchesFromStore(ms []*store.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, matchFromStore(m))
	}
	return out
}

func playerFromStore(p *store.PlayerRecord) PlayerResponse {
	return PlayerResponse{
		Name:     p.Name,
		Wins:     p.Wins,
		Losses:   p.Losses,
		Forfeits: p.Forfeits,
	}
}
