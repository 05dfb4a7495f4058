// Package placement validates and commits ship placement onto a board.
// Manual placement derives a run from a start cell and a drag delta;
// automated placement retries random runs a bounded number of times.
// Both modes share one validation core.
package placement

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/fleet"
	"github.com/talgya/broadside/internal/world"
)

// MaxAutoTries bounds the random retries per ship during auto-placement.
const MaxAutoTries = 100

// Orientation is the direction a run extends from its start cell.
type Orientation uint8

const (
	East  Orientation = iota // Columns increasing
	West                     // Columns decreasing
	South                    // Rows increasing
	North                    // Rows decreasing
)

var orientationDeltas = [4]world.Coord{
	East:  {Row: 0, Col: 1},
	West:  {Row: 0, Col: -1},
	South: {Row: 1, Col: 0},
	North: {Row: -1, Col: 0},
}

// OrientationFromDrag derives an orientation from a drag delta.
// The dominant axis wins; ties go to horizontal. The sign of the delta
// selects the direction, so dragging left or up extends the run that way.
func OrientationFromDrag(dRow, dCol int) Orientation {
	absR, absC := dRow, dCol
	if absR < 0 {
		absR = -absR
	}
	if absC < 0 {
		absC = -absC
	}
	if absC >= absR {
		if dCol < 0 {
			return West
		}
		return East
	}
	if dRow < 0 {
		return North
	}
	return South
}

// Run computes the size-length cell run from a start cell and orientation.
// Cells are ordered from the start cell outward.
func Run(start world.Coord, o Orientation, size int) []world.Coord {
	d := orientationDeltas[o]
	cells := make([]world.Coord, size)
	for i := 0; i < size; i++ {
		cells[i] = world.Coord{Row: start.Row + i*d.Row, Col: start.Col + i*d.Col}
	}
	return cells
}

// Rules configures placement validation beyond the board's terrain checks.
type Rules struct {
	// AllowFleetOverlap permits two ships of the same fleet to share a cell.
	AllowFleetOverlap bool

	// Restriction, when positive, confines placement to a centered square of
	// that side length. Used by oversized-grid eras.
	Restriction int
}

// Engine validates and commits ship placement for one match.
type Engine struct {
	board *board.Board
	arena *fleet.Arena
	rules Rules
}

// NewEngine creates a placement engine over the match board and ship arena.
func NewEngine(b *board.Board, arena *fleet.Arena, rules Rules) *Engine {
	return &Engine{board: b, arena: arena, rules: rules}
}

// Validate checks a run for the given ship.
// Order is fail-fast: bounds, exclusion, terrain compatibility, placement
// restriction, then same-fleet overlap when the rule demands it.
func (e *Engine) Validate(ship *fleet.Ship, ownerID uuid.UUID, cells []world.Coord) error {
	if len(cells) != ship.Size {
		return fmt.Errorf("run has %d cells, ship %q needs %d", len(cells), ship.Name, ship.Size)
	}
	for _, c := range cells {
		if !e.board.IsValidCoordinate(c) {
			return fmt.Errorf("cell %v is out of bounds", c)
		}
		if e.board.IsExcluded(c) {
			return fmt.Errorf("cell %v is excluded terrain", c)
		}
		if t := e.board.TerrainAt(c); !ship.Allowed.Has(t) {
			return fmt.Errorf("ship %q cannot occupy %s at %v", ship.Name, world.TerrainName(t), c)
		}
	}
	if err := e.checkRestriction(cells); err != nil {
		return err
	}
	if !e.rules.AllowFleetOverlap {
		if err := e.checkOverlap(ship, ownerID, cells); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) checkRestriction(cells []world.Coord) error {
	if e.rules.Restriction <= 0 {
		return nil
	}
	g := e.board.Grid()
	r0 := (g.Rows - e.rules.Restriction) / 2
	c0 := (g.Cols - e.rules.Restriction) / 2
	for _, c := range cells {
		if c.Row < r0 || c.Row >= r0+e.rules.Restriction || c.Col < c0 || c.Col >= c0+e.rules.Restriction {
			return fmt.Errorf("cell %v is outside the placement zone", c)
		}
	}
	return nil
}

// checkOverlap rejects runs crossing another ship of the same fleet.
// Ships of other fleets are conceptually on a separate layer of the shared
// board and do not block placement.
func (e *Engine) checkOverlap(ship *fleet.Ship, ownerID uuid.UUID, cells []world.Coord) error {
	for _, c := range cells {
		for _, occ := range e.board.OccupantsAt(c) {
			other := e.arena.Ship(occ.ShipIdx)
			if other == ship {
				continue
			}
			if e.arena.Owner(occ.ShipIdx) == ownerID {
				return fmt.Errorf("cell %v is taken by %q", c, other.Name)
			}
		}
	}
	return nil
}

// Place validates a run and commits it: board occupant index first (which
// fails closed), then the ship's own placement state. A failed validation
// never partially registers a ship.
func (e *Engine) Place(ship *fleet.Ship, ownerID uuid.UUID, cells []world.Coord) error {
	if err := e.Validate(ship, ownerID, cells); err != nil {
		return err
	}
	idx := e.arena.Index(ship)
	if idx < 0 {
		return fmt.Errorf("ship %q is not registered in the arena", ship.Name)
	}
	if err := e.board.RegisterPlacement(idx, cells, ship.Allowed); err != nil {
		return err
	}
	ship.Place(cells)
	return nil
}

// PlaceManual places a ship from a start cell and a drag delta.
func (e *Engine) PlaceManual(ship *fleet.Ship, ownerID uuid.UUID, start world.Coord, dRow, dCol int) error {
	o := OrientationFromDrag(dRow, dCol)
	return e.Place(ship, ownerID, Run(start, o, ship.Size))
}

// Unplace clears a ship's board entries and resets it.
func (e *Engine) Unplace(ship *fleet.Ship) {
	if idx := e.arena.Index(ship); idx >= 0 {
		e.board.ClearPlacement(idx)
	}
	ship.Reset()
}

// AutoPlace places every unplaced ship of the fleet with bounded random
// retries. A ship that cannot be placed within MaxAutoTries is reported as
// an error naming the ship; it is never silently skipped.
func (e *Engine) AutoPlace(f *fleet.Fleet, rng *rand.Rand) error {
	g := e.board.Grid()
	for ship := f.NextUnplaced(); ship != nil; ship = f.NextUnplaced() {
		placed := false
		for try := 0; try < MaxAutoTries; try++ {
			start := world.Coord{Row: rng.Intn(g.Rows), Col: rng.Intn(g.Cols)}
			o := Orientation(rng.Intn(4))
			if err := e.Place(ship, f.OwnerID, Run(start, o, ship.Size)); err == nil {
				placed = true
				break
			}
		}
		if !placed {
			return fmt.Errorf("auto-placement failed for ship %q after %d tries", ship.Name, MaxAutoTries)
		}
	}
	return nil
}
