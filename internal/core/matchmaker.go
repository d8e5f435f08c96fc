package core

import (
	"time"

	"github.com/vovakirdan/wirebattle-server/internal/proto"
	"github.com/vovakirdan/wirebattle-server/internal/utils"
)

const (
	minHitpoints  = 20
	maxHitpoints  = 30
	minPowermoves = 1
	maxPowermoves = 3
	killmoves     = 1
)

// tryMatch pairs c with the first eligible client in registry order.
// It reports whether a match was formed.
func (h *Hub) tryMatch(c *Client) bool {
	if !h.eligible(c) {
		return false
	}
	for _, other := range h.registry.All() {
		if other.Handle == c.Handle || !h.eligible(other) || rematchBlocked(c, other) {
			continue
		}
		h.startMatch(c, other)
		return true
	}
	h.log.Debug().Str("name", c.Name).Msg("no opponent available")
	return false
}

func (h *Hub) eligible(c *Client) bool {
	return c.Named() && c.Idle && !c.InMatch() && !h.isDoomed(c)
}

// rematchBlocked holds while a and b still remember each other as their last
// opponent. Once either has fought someone else the pair is allowed again.
func rematchBlocked(a, b *Client) bool {
	return a.LastOpponent == b.Handle && b.LastOpponent == a.Handle
}

func (h *Hub) startMatch(a, b *Client) {
	first, second := a, b
	if h.dice.Intn(2) == 1 {
		first, second = b, a
	}

	id := utils.NewMatchID()
	now := time.Now()
	for _, p := range []*Client{a, b} {
		p.Idle = false
		p.TurnActive = false
		p.speaking = false
		p.turns = 0
		p.MatchID = id
		p.matchStarted = now
		p.Hitpoints = between(h.dice, minHitpoints, maxHitpoints)
		p.Powermoves = between(h.dice, minPowermoves, maxPowermoves)
		p.Killmoves = killmoves
	}
	a.Opponent = b.Handle
	b.Opponent = a.Handle
	first.TurnActive = true

	h.log.Info().
		Str("match_id", id).
		Str("first", first.Name).
		Str("second", second.Name).
		Msg("match started")

	h.broadcast(proto.MatchFormed(a.Name, b.Name))
	h.prompt(first, second)
}

// endMatch detaches both combatants, returns them to the idle pool and
// remembers each as the other's last opponent.
func (h *Hub) endMatch(winner, loser *Client, outcome Outcome) MatchRecord {
	rec := MatchRecord{
		ID:        winner.MatchID,
		Winner:    winner.Name,
		Loser:     loser.Name,
		Outcome:   outcome,
		Turns:     winner.turns + loser.turns,
		StartedAt: winner.matchStarted,
		EndedAt:   time.Now(),
	}

	winner.resetMatch()
	loser.resetMatch()
	winner.LastOpponent = loser.Handle
	loser.LastOpponent = winner.Handle

	h.log.Info().
		Str("match_id", rec.ID).
		Str("winner", rec.Winner).
		Str("loser", rec.Loser).
		Str("outcome", string(outcome)).
		Int("turns", rec.Turns).
		Msg("match finished")
	return rec
}
