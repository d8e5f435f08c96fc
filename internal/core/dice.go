package core

import "math/rand/v2"

// Dice is the randomness source for matchmaking and combat.
type Dice interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// NewDice returns a Dice backed by the process-wide random generator.
func NewDice() Dice {
	return systemDice{}
}

type systemDice struct{}

func (systemDice) Intn(n int) int {
	return rand.IntN(n)
}

// between returns a uniform value in [lo, hi].
func between(d Dice, lo, hi int) int {
	return lo + d.Intn(hi-lo+1)
}
