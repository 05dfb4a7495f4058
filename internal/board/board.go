// Package board provides the shared match board: a terrain grid plus a
// sparse cell→occupant index and an ordered shot history.
// The board is a pure lookup index; ships own their placement data and the
// board never references players or the game.
package board

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/broadside/internal/world"
)

// Occupant records one cell of one placed ship.
// ShipIdx is a stable index into the match's ship arena; CellIdx is the
// position of this cell within the ship's run.
type Occupant struct {
	ShipIdx int
	CellIdx int
}

// ShotResult classifies the outcome of one resolved cell.
type ShotResult uint8

const (
	ResultMiss       ShotResult = iota // Empty cell
	ResultHit                          // Damaged a ship cell
	ResultAlreadyHit                   // Cell was already at zero health
	ResultSunk                         // This hit destroyed the ship's last cell
)

var resultNames = map[ShotResult]string{
	ResultMiss:       "miss",
	ResultHit:        "hit",
	ResultAlreadyHit: "already-hit",
	ResultSunk:       "sunk",
}

// ResultName returns a human-readable name for a shot result.
func ResultName(r ShotResult) string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// ShotRecord is one entry of the append-only shot history.
type ShotRecord struct {
	Coord      world.Coord
	AttackerID uuid.UUID
	Result     ShotResult
	At         time.Time
}

// Board wraps a terrain grid and owns the occupant index and shot history
// for one match. It is created once per match and mutated only through
// placement and attack operations.
type Board struct {
	grid      *world.Grid
	occupants map[world.Coord][]Occupant
	shots     []ShotRecord
}

// New creates an empty board over the given terrain grid.
func New(grid *world.Grid) *Board {
	return &Board{
		grid:      grid,
		occupants: make(map[world.Coord][]Occupant),
	}
}

// Grid returns the underlying terrain grid.
func (b *Board) Grid() *world.Grid { return b.grid }

// Rows returns the grid height.
func (b *Board) Rows() int { return b.grid.Rows }

// Cols returns the grid width.
func (b *Board) Cols() int { return b.grid.Cols }

// IsValidCoordinate reports whether the coordinate is inside the rectangle.
func (b *Board) IsValidCoordinate(c world.Coord) bool {
	return b.grid.InBounds(c)
}

// TerrainAt returns the terrain at the coordinate.
func (b *Board) TerrainAt(c world.Coord) world.Terrain {
	return b.grid.At(c)
}

// IsExcluded reports whether the cell is off-board.
func (b *Board) IsExcluded(c world.Coord) bool {
	return b.grid.IsExcluded(c)
}

// CanPlace reports whether a ship with the given terrain permissions may
// occupy every cell of the run. Checks bounds, exclusion, and terrain
// compatibility only; occupancy rules are layered by the placement engine.
func (b *Board) CanPlace(cells []world.Coord, allowed world.TerrainSet) bool {
	for _, c := range cells {
		if !b.grid.InBounds(c) {
			return false
		}
		t := b.grid.At(c)
		if t == world.TerrainExcluded {
			return false
		}
		if !allowed.Has(t) {
			return false
		}
	}
	return true
}

// RegisterPlacement records a ship's run in the occupant index.
// It fails closed: if the run does not pass CanPlace, nothing is registered.
// Re-registering a ship first clears its previous entries, so a clear-and-
// replace cycle is idempotent.
func (b *Board) RegisterPlacement(shipIdx int, cells []world.Coord, allowed world.TerrainSet) error {
	if !b.CanPlace(cells, allowed) {
		return fmt.Errorf("placement of ship %d rejected: run %v not placeable", shipIdx, cells)
	}
	b.ClearPlacement(shipIdx)
	for i, c := range cells {
		b.occupants[c] = append(b.occupants[c], Occupant{ShipIdx: shipIdx, CellIdx: i})
	}
	return nil
}

// ClearPlacement removes every occupant entry for the given ship.
func (b *Board) ClearPlacement(shipIdx int) {
	for c, occ := range b.occupants {
		kept := occ[:0]
		for _, o := range occ {
			if o.ShipIdx != shipIdx {
				kept = append(kept, o)
			}
		}
		if len(kept) == 0 {
			delete(b.occupants, c)
		} else {
			b.occupants[c] = kept
		}
	}
}

// OccupantsAt returns the occupant entries at a cell.
// Multiple entries per cell are structurally possible when the overlap rule
// permits it; callers resolve each entry.
func (b *Board) OccupantsAt(c world.Coord) []Occupant {
	return b.occupants[c]
}

// IsValidAttackTarget reports whether a munition may target the cell:
// inside the rectangle and not excluded.
func (b *Board) IsValidAttackTarget(c world.Coord) bool {
	return b.grid.InBounds(c) && !b.grid.IsExcluded(c)
}

// RecordShot appends one entry to the shot history.
// Prior entries are never mutated.
func (b *Board) RecordShot(c world.Coord, attackerID uuid.UUID, result ShotResult) {
	b.shots = append(b.shots, ShotRecord{
		Coord:      c,
		AttackerID: attackerID,
		Result:     result,
		At:         time.Now(),
	})
}

// Shots returns the full shot history in firing order.
func (b *Board) Shots() []ShotRecord {
	return b.shots
}

// ShotsAt returns every recorded shot at the given cell.
func (b *Board) ShotsAt(c world.Coord) []ShotRecord {
	var out []ShotRecord
	for _, s := range b.shots {
		if s.Coord == c {
			out = append(out, s)
		}
	}
	return out
}

// WasAttacked reports whether any shot has been recorded at the cell.
func (b *Board) WasAttacked(c world.Coord) bool {
	for _, s := range b.shots {
		if s.Coord == c {
			return true
		}
	}
	return false
}
