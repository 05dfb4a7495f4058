package fleet

import "github.com/google/uuid"

// Fleet is the ordered collection of ships belonging to one player.
type Fleet struct {
	OwnerID uuid.UUID
	Ships   []*Ship
}

// NewFleet creates a fleet for the given owner.
func NewFleet(ownerID uuid.UUID, ships []*Ship) *Fleet {
	return &Fleet{OwnerID: ownerID, Ships: ships}
}

// NextUnplaced returns the first ship not yet placed, or nil.
func (f *Fleet) NextUnplaced() *Ship {
	for _, s := range f.Ships {
		if !s.Placed {
			return s
		}
	}
	return nil
}

// IsComplete reports whether every ship has been placed.
func (f *Fleet) IsComplete() bool {
	for _, s := range f.Ships {
		if !s.Placed {
			return false
		}
	}
	return true
}

// AllSunk reports whether every ship of the fleet is sunk.
func (f *Fleet) AllSunk() bool {
	for _, s := range f.Ships {
		if !s.IsSunk() {
			return false
		}
	}
	return true
}

// UnsunkCells counts ship cells across the fleet that still have health.
func (f *Fleet) UnsunkCells() int {
	n := 0
	for _, s := range f.Ships {
		n += s.UnsunkCells()
	}
	return n
}

// ShipByID returns the fleet's ship with the given id, or nil.
func (f *Fleet) ShipByID(id int) *Ship {
	for _, s := range f.Ships {
		if s.ID == id {
			return s
		}
	}
	return nil
}
