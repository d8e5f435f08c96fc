package core

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/wirebattle-server/internal/proto"
)

const (
	minDamage       = 2
	maxDamage       = 6
	powerMultiplier = 3
	// killmoveOdds is the denominator of the killmove hit chance (1 in 4).
	killmoveOdds = 4
)

// turn is the result of resolving one accepted move.
type turn struct {
	report   string
	consumed bool
}

// handleMove drives the per-match state machine for one line of input from p.
// Invalid input and speak never recurse: they answer and return to the loop,
// leaving the match in AWAITING_MOVE for the same player.
func (h *Hub) handleMove(p *Client, line string) {
	o := h.registry.Find(p.Opponent)
	if o == nil {
		return
	}

	if !p.TurnActive {
		h.log.Debug().Str("name", p.Name).Err(ErrNotYourTurn).Msg("rejected move")
		h.send(p, proto.NotYourTurn(o.Name))
		return
	}

	if p.speaking {
		p.speaking = false
		said := proto.Says(p.Name, line)
		h.send(p, said)
		h.send(o, said)
		h.prompt(p, o)
		return
	}

	t, err := h.resolve(p, o, strings.TrimSpace(line))
	if err != nil {
		h.log.Debug().Str("name", p.Name).Str("move", line).Err(err).Msg("rejected move")
		h.send(p, proto.InvalidMove)
		h.send(p, proto.Menu(p.Powermoves, p.Killmoves))
		return
	}
	if !t.consumed {
		return
	}

	p.turns++
	h.send(p, t.report)
	h.send(o, t.report)

	if o.Hitpoints <= 0 {
		o.Hitpoints = 0
		h.send(p, proto.Victory(o.Name))
		h.send(o, proto.Defeat(p.Name))
		rec := h.endMatch(p, o, OutcomeDefeat)
		h.send(p, proto.AwaitNext)
		h.send(o, proto.AwaitNext)
		h.emit(rec)
		h.tryMatch(p)
		h.tryMatch(o)
		return
	}

	p.TurnActive = false
	o.TurnActive = true
	h.send(p, h.status(p, o))
	h.send(p, proto.AwaitMove(o.Name))
	h.prompt(o, p)
}

// resolve applies move token to the match. Errors leave all state untouched.
func (h *Hub) resolve(p, o *Client, token string) (turn, error) {
	switch strings.ToLower(token) {
	case proto.MoveAttack:
		dmg := between(h.dice, minDamage, maxDamage)
		o.Hitpoints -= dmg
		return turn{report: proto.Hit(p.Name, o.Name, dmg), consumed: true}, nil

	case proto.MovePowermove:
		if p.Powermoves <= 0 {
			return turn{}, fmt.Errorf("powermove: %w", ErrMoveExhausted)
		}
		p.Powermoves--
		if h.dice.Intn(2) == 0 {
			return turn{report: proto.PowerMiss(p.Name, o.Name), consumed: true}, nil
		}
		dmg := between(h.dice, minDamage, maxDamage) * powerMultiplier
		o.Hitpoints -= dmg
		return turn{report: proto.PowerHit(p.Name, o.Name, dmg), consumed: true}, nil

	case proto.MoveKillmove:
		if p.Killmoves <= 0 {
			return turn{}, fmt.Errorf("killmove: %w", ErrMoveExhausted)
		}
		p.Killmoves--
		if h.dice.Intn(killmoveOdds) != 0 {
			return turn{report: proto.KillMiss(p.Name, o.Name), consumed: true}, nil
		}
		dmg := o.Hitpoints
		o.Hitpoints = 0
		return turn{report: proto.KillHit(p.Name, o.Name, dmg), consumed: true}, nil

	case proto.MoveSpeak:
		p.speaking = true
		h.send(p, proto.SpeakPrompt)
		return turn{}, nil

	default:
		return turn{}, fmt.Errorf("%q: %w", token, ErrUnknownMove)
	}
}

func (h *Hub) status(p, o *Client) string {
	return proto.Status{
		Hitpoints:         p.Hitpoints,
		Powermoves:        p.Powermoves,
		Killmoves:         p.Killmoves,
		Opponent:          o.Name,
		OpponentHitpoints: o.Hitpoints,
	}.String()
}

// prompt sends p its status block and the moves it may choose from.
func (h *Hub) prompt(p, o *Client) {
	h.send(p, h.status(p, o))
	h.send(p, proto.Menu(p.Powermoves, p.Killmoves))
}
