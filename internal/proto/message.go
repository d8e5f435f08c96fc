// Package proto holds every line the server writes to a battle client.
package proto

import (
	"fmt"
	"strings"
)

// EOL terminates every outbound line.
const EOL = "\r\n"

const (
	MoveAttack    = "a"
	MovePowermove = "p"
	MoveSpeak     = "s"
	MoveKillmove  = "k"
)

const (
	NamePrompt      = "What is your name?" + EOL
	AwaitOpponent   = "Awaiting opponent..." + EOL
	AwaitNext       = "Awaiting next opponent..." + EOL
	SpeakPrompt     = EOL + "Speak: "
	InvalidMove     = "Invalid move." + EOL
	BlankNameRetry  = "Names cannot be blank." + EOL
	ServerShutdown  = EOL + "Server is shutting down. Goodbye." + EOL
	LineTooLong     = EOL + "Line too long, disconnecting." + EOL
	killmoveTag     = "(k)illmove"
	powermoveTag    = "(p)owermove"
	attackTag       = "(a)ttack"
	speakTag        = "(s)peak something"
	menuIndentation = "  "
)

// Joined announces a newly named client to everyone.
func Joined(name string) string {
	return fmt.Sprintf("**%s joined the area.**%s", name, EOL)
}

// Left announces a named client's disconnect to everyone.
func Left(name string) string {
	return fmt.Sprintf("**%s leaves the area.**%s", name, EOL)
}

// MatchFormed announces a new pairing to everyone.
func MatchFormed(a, b string) string {
	return fmt.Sprintf("Player (%s) will begin a match with player (%s)%s", a, b, EOL)
}

// Status is the private status block shown to one combatant.
type Status struct {
	Hitpoints         int
	Powermoves        int
	Killmoves         int
	Opponent          string
	OpponentHitpoints int
}

// String renders the block.
func (s Status) String() string {
	var b strings.Builder
	b.WriteString(EOL)
	fmt.Fprintf(&b, "You have %d hitpoints.%s", s.Hitpoints, EOL)
	fmt.Fprintf(&b, "You have %d powermoves.%s", s.Powermoves, EOL)
	fmt.Fprintf(&b, "You have %d killmoves.%s", s.Killmoves, EOL)
	fmt.Fprintf(&b, "%s has %d hitpoints.%s", s.Opponent, s.OpponentHitpoints, EOL)
	return b.String()
}

// Menu lists the moves currently available; exhausted moves are hidden.
func Menu(powermoves, killmoves int) string {
	var b strings.Builder
	b.WriteString(EOL)
	b.WriteString(menuIndentation + attackTag + EOL)
	if powermoves > 0 {
		b.WriteString(menuIndentation + powermoveTag + EOL)
	}
	if killmoves > 0 {
		b.WriteString(menuIndentation + killmoveTag + EOL)
	}
	b.WriteString(menuIndentation + speakTag + EOL)
	return b.String()
}

// AwaitMove tells the player who just acted to wait.
func AwaitMove(opponent string) string {
	return fmt.Sprintf("Waiting for %s to strike...%s", opponent, EOL)
}

// NotYourTurn rejects input from the inactive combatant.
func NotYourTurn(opponent string) string {
	return fmt.Sprintf("It is %s's turn. Please wait.%s", opponent, EOL)
}

// Hit reports a landed attack or powermove.
func Hit(attacker, defender string, damage int) string {
	return fmt.Sprintf("%s hits %s for %d damage!%s", attacker, defender, damage, EOL)
}

// PowerHit reports a landed powermove.
func PowerHit(attacker, defender string, damage int) string {
	return fmt.Sprintf("%s powermoves %s for %d damage!%s", attacker, defender, damage, EOL)
}

// PowerMiss reports a missed powermove.
func PowerMiss(attacker, defender string) string {
	return fmt.Sprintf("%s missed %s with a powermove!%s", attacker, defender, EOL)
}

// KillHit reports a landed killmove.
func KillHit(attacker, defender string, damage int) string {
	return fmt.Sprintf("%s lands a killmove on %s for %d damage!%s", attacker, defender, damage, EOL)
}

// KillMiss reports a missed killmove.
func KillMiss(attacker, defender string) string {
	return fmt.Sprintf("%s's killmove missed %s!%s", attacker, defender, EOL)
}

// Says relays speech to both combatants.
func Says(speaker, text string) string {
	return fmt.Sprintf("%s says: %s%s", speaker, text, EOL)
}

// Victory is sent to the winner of a match.
func Victory(loser string) string {
	return fmt.Sprintf("%s gives up. You win!%s", loser, EOL)
}

// Defeat is sent to the loser of a match.
func Defeat(winner string) string {
	return fmt.Sprintf("You are no match for %s. You scurry away...%s", winner, EOL)
}

// Dropped tells the survivor that the opponent disconnected.
func Dropped(opponent string) string {
	return fmt.Sprintf("--%s dropped. You win!%s", opponent, EOL)
}
