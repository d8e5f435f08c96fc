package utils

import "github.com/google/uuid"

// NewMatchID returns a unique identifier for a match.
func NewMatchID() string {
	return uuid.NewString()
}
