package fleet

import "github.com/google/uuid"

// Arena holds every ship in a match under stable indices.
// The board's occupant index stores arena indices, so each ship remains the
// single owner of its placement data while the board stays a pure lookup.
type Arena struct {
	ships  []*Ship
	owners []uuid.UUID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add registers a ship and its owning player, returning its stable index.
func (a *Arena) Add(s *Ship, ownerID uuid.UUID) int {
	a.ships = append(a.ships, s)
	a.owners = append(a.owners, ownerID)
	return len(a.ships) - 1
}

// Ship returns the ship at the given arena index.
func (a *Arena) Ship(idx int) *Ship {
	return a.ships[idx]
}

// Owner returns the owning player of the ship at the given arena index.
func (a *Arena) Owner(idx int) uuid.UUID {
	return a.owners[idx]
}

// Len returns the number of registered ships.
func (a *Arena) Len() int {
	return len(a.ships)
}

// Index returns the arena index of the given ship, or -1.
func (a *Arena) Index(s *Ship) int {
	for i, other := range a.ships {
		if other == s {
			return i
		}
	}
	return -1
}
