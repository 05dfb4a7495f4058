package game

import (
	"github.com/google/uuid"

	"github.com/talgya/broadside/internal/player"
)

// Alliance is a named team of players sharing a win/loss outcome.
type Alliance struct {
	ID      string
	Name    string
	Members []uuid.UUID
}

// IsDefeated reports whether every member's fleet is entirely sunk.
func (a *Alliance) IsDefeated(players map[uuid.UUID]*player.Player) bool {
	for _, id := range a.Members {
		p := players[id]
		if p == nil {
			continue
		}
		if !p.Fleet.AllSunk() {
			return false
		}
	}
	return true
}
