// Package fleet provides ships, fleets, and the match-wide ship arena.
package fleet

import (
	"github.com/talgya/broadside/internal/world"
)

// Class categorizes a ship hull.
type Class uint8

const (
	ClassCarrier    Class = iota // Size 5, deep water only
	ClassBattleship              // Size 4
	ClassCruiser                 // Size 3
	ClassSubmarine               // Size 3, carries torpedoes
	ClassDestroyer               // Size 2
	ClassPatrolBoat              // Size 1, flat-bottom hull
)

var classNames = map[Class]string{
	ClassCarrier:    "carrier",
	ClassBattleship: "battleship",
	ClassCruiser:    "cruiser",
	ClassSubmarine:  "submarine",
	ClassDestroyer:  "destroyer",
	ClassPatrolBoat: "patrol-boat",
}

// ClassName returns a human-readable name for a hull class.
func ClassName(c Class) string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseClass converts a class name back to its Class value.
func ParseClass(name string) (Class, bool) {
	for c, n := range classNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// HitOutcome classifies the effect of damaging one ship cell.
type HitOutcome uint8

const (
	OutcomeHit        HitOutcome = iota // Cell damaged
	OutcomeAlreadyHit                   // Cell was already at zero health
	OutcomeSunk                         // This hit emptied the ship's last cell
)

// Ship is a placed or unplaced unit with per-cell health.
type Ship struct {
	ID      int
	Name    string
	Class   Class
	Size    int
	Allowed world.TerrainSet

	// Placement state. Cells is empty until the ship is placed and always
	// has exactly Size entries afterwards.
	Cells  []world.Coord
	Placed bool

	// Per-cell hit points, indexed like Cells. Default 1 per cell.
	Health []int

	// Torpedo inventory for classes that carry them. The balance belongs to
	// this ship, not to a player-wide pool.
	Torpedoes int
}

// NewShip creates an unplaced ship with one hit point per cell.
func NewShip(id int, name string, class Class, size int, allowed world.TerrainSet) *Ship {
	s := &Ship{
		ID:      id,
		Name:    name,
		Class:   class,
		Size:    size,
		Allowed: allowed,
	}
	s.resetHealth()
	return s
}

func (s *Ship) resetHealth() {
	s.Health = make([]int, s.Size)
	for i := range s.Health {
		s.Health[i] = 1
	}
}

// Place assigns the ship's cell run and marks it placed.
// The run length must equal the ship size.
func (s *Ship) Place(cells []world.Coord) {
	if len(cells) != s.Size {
		panic("fleet: placement run length does not match ship size")
	}
	s.Cells = append(s.Cells[:0], cells...)
	s.Placed = true
}

// Reset clears the placement and restores full health.
func (s *Ship) Reset() {
	s.Cells = nil
	s.Placed = false
	s.resetHealth()
}

// Hit applies damage to one cell of the ship.
// Hitting a cell already at zero health is idempotent and reports
// OutcomeAlreadyHit without changing state.
func (s *Ship) Hit(cellIdx int) HitOutcome {
	if cellIdx < 0 || cellIdx >= len(s.Health) {
		return OutcomeAlreadyHit
	}
	if s.Health[cellIdx] <= 0 {
		return OutcomeAlreadyHit
	}
	s.Health[cellIdx]--
	if s.IsSunk() {
		return OutcomeSunk
	}
	return OutcomeHit
}

// IsSunk reports whether every cell has zero or negative health.
// Pure over Health; once true it stays true because health never recovers
// within a match.
func (s *Ship) IsSunk() bool {
	for _, hp := range s.Health {
		if hp > 0 {
			return false
		}
	}
	return true
}

// UnsunkCells counts cells that still have positive health.
func (s *Ship) UnsunkCells() int {
	n := 0
	for _, hp := range s.Health {
		if hp > 0 {
			n++
		}
	}
	return n
}
