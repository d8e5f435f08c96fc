package core

import "errors"

var (
	// ErrUnknownMove is returned for a token outside the move vocabulary.
	ErrUnknownMove = errors.New("unknown move")
	// ErrMoveExhausted is returned for a powermove or killmove with no uses left.
	ErrMoveExhausted = errors.New("move exhausted")
	// ErrNotYourTurn is returned for combat input from the inactive player.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrLineOverflow terminates a connection that sent an over-long line.
	ErrLineOverflow = errors.New("line overflow")
	// ErrPeerClosed is the disconnect reason for an orderly end of stream.
	ErrPeerClosed = errors.New("peer closed connection")
)
