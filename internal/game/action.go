// Action types for the turn engine: a closed tagged union matched
// exhaustively by ProcessAction, plus the result shape returned to callers.
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/world"
)

// ActionKind enumerates the discrete actions the engine accepts.
type ActionKind uint8

const (
	ActionPlaceShip ActionKind = iota // Manual placement from a drag gesture
	ActionUnplaceShip                 // Clear a ship during placement
	ActionAutoPlace                   // Randomized placement of the remaining fleet
	ActionFire                        // Fire a munition at a target
)

// Munition is the category of an attack action.
type Munition uint8

const (
	MunitionShot        Munition = iota // Single cell, unlimited supply
	MunitionStarShell                   // Area reveal, no damage, limited supply
	MunitionScatterShot                 // Plus-shaped damage pattern, limited supply
	MunitionTorpedo                     // Single cell, drawn from a submarine's inventory
)

var munitionNames = map[Munition]string{
	MunitionShot:        "shot",
	MunitionStarShell:   "star-shell",
	MunitionScatterShot: "scatter-shot",
	MunitionTorpedo:     "torpedo",
}

// MunitionName returns a human-readable name for a munition.
func MunitionName(m Munition) string {
	if name, ok := munitionNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMunition converts a munition name back to its value.
func ParseMunition(name string) (Munition, bool) {
	for m, n := range munitionNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

// Action is one discrete request from a player.
// Kind selects which fields are meaningful.
type Action struct {
	Kind     ActionKind
	PlayerID uuid.UUID

	// Placement fields.
	ShipID int
	Start  world.Coord
	DragRow int
	DragCol int

	// Fire fields.
	Munition Munition
	Target   world.Coord
}

// CellReport describes one cell affected by a completed action.
type CellReport struct {
	Coord world.Coord `json:"coord"`

	// Damage outcome; meaningless for reveals.
	Result board.ShotResult `json:"result"`

	// Reveal data (star shell only).
	Revealed bool `json:"revealed"`
	Occupied bool `json:"occupied"`
}

// EventEntry is one line of the human-readable match log.
type EventEntry struct {
	Turn    int       `json:"turn"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Result is the observable effect of one completed action.
type Result struct {
	Kind         ActionKind   `json:"kind"`
	Cells        []CellReport `json:"cells,omitempty"`
	Event        EventEntry   `json:"event"`
	TurnAdvanced bool         `json:"turn_advanced"`
	Winner       string       `json:"winner,omitempty"` // Alliance ID once the match finishes
}
