// Package player provides turn participants: humans and AI players.
// A player owns a fleet, shot statistics, munition balances, and the
// grow-only set of coordinates it must never target again.
package player

import (
	"github.com/google/uuid"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/fleet"
	"github.com/talgya/broadside/internal/world"
)

// Kind distinguishes human participants from AI participants.
type Kind uint8

const (
	Human Kind = iota
	AI
)

// Scoring weights applied by RecordShotOutcome.
const (
	scoreHit  = 10
	scoreSunk = 50
)

// Player is one turn participant.
type Player struct {
	ID         uuid.UUID
	Kind       Kind
	Name       string
	AllianceID string
	Fleet      *fleet.Fleet

	// Shot statistics.
	Shots  int
	Hits   int
	Misses int
	Sunk   int // Enemy ships this player sank
	Lost   int // Own ships lost
	Score  int

	// Munition balances with limited supply. Torpedoes live on submarines,
	// not here.
	StarShells  int
	ScatterShot int

	// AI players only.
	Strategy   Strategy
	Difficulty float64

	// Coordinates this player must not target again: confirmed misses and
	// every cell of ships it has already sunk. Grows monotonically within a
	// match.
	dontShoot map[world.Coord]struct{}
}

// New creates a player with an empty dont-shoot set.
func New(kind Kind, name, allianceID string) *Player {
	return &Player{
		ID:         uuid.New(),
		Kind:       kind,
		Name:       name,
		AllianceID: allianceID,
		dontShoot:  make(map[world.Coord]struct{}),
	}
}

// CanShootAt reports whether the player may target the cell: a valid attack
// target on the board and not in the dont-shoot set.
func (p *Player) CanShootAt(b *board.Board, c world.Coord) bool {
	if !b.IsValidAttackTarget(c) {
		return false
	}
	_, banned := p.dontShoot[c]
	return !banned
}

// MarkUnshootable adds a coordinate to the dont-shoot set.
// Coordinates are never removed within a match.
func (p *Player) MarkUnshootable(c world.Coord) {
	p.dontShoot[c] = struct{}{}
}

// IsUnshootable reports whether the coordinate is in the dont-shoot set.
func (p *Player) IsUnshootable(c world.Coord) bool {
	_, ok := p.dontShoot[c]
	return ok
}

// DontShootCount returns the size of the dont-shoot set.
func (p *Player) DontShootCount() int {
	return len(p.dontShoot)
}

// RecordShotOutcome updates the player's statistics for one resolved cell.
func (p *Player) RecordShotOutcome(result board.ShotResult) {
	p.Shots++
	switch result {
	case board.ResultHit:
		p.Hits++
		p.Score += scoreHit
	case board.ResultSunk:
		p.Hits++
		p.Sunk++
		p.Score += scoreHit + scoreSunk
	case board.ResultMiss, board.ResultAlreadyHit:
		p.Misses++
	}
}

// Accuracy returns hits over shots, or zero before the first shot.
func (p *Player) Accuracy() float64 {
	if p.Shots == 0 {
		return 0
	}
	return float64(p.Hits) / float64(p.Shots)
}

// Submarine returns the player's first unsunk submarine with torpedoes left,
// or nil. Torpedo eligibility is checked against this ship.
func (p *Player) Submarine() *fleet.Ship {
	for _, s := range p.Fleet.Ships {
		if s.Class == fleet.ClassSubmarine && !s.IsSunk() && s.Torpedoes > 0 {
			return s
		}
	}
	return nil
}
