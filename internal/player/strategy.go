// AI target selection. A strategy is a pure function of the board, the
// player's dont-shoot set, and the difficulty scalar: it returns one target
// or reports exhaustion, and never mutates anything.
package player

import (
	"errors"
	"math/rand"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/world"
)

// ErrNoTargets reports that no legal attack target remains for the player.
// This is a defensive condition, not a win condition; it should not occur
// before the match ends.
var ErrNoTargets = errors.New("no legal attack targets remain")

// Strategy selects an attack target for an AI player.
// Implementations must be side-effect-free; randomness comes from the
// supplied source so matches stay deterministic under a fixed seed.
type Strategy interface {
	Name() string
	ChooseTarget(b *board.Board, p *Player, rng *rand.Rand) (world.Coord, error)
}

// legalTargets enumerates every coordinate the player may still attack.
func legalTargets(b *board.Board, p *Player) []world.Coord {
	var out []world.Coord
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			coord := world.Coord{Row: r, Col: c}
			if p.CanShootAt(b, coord) {
				out = append(out, coord)
			}
		}
	}
	return out
}

// RandomStrategy is the baseline: uniform random over legal targets.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) ChooseTarget(b *board.Board, p *Player, rng *rand.Rand) (world.Coord, error) {
	targets := legalTargets(b, p)
	if len(targets) == 0 {
		return world.Coord{}, ErrNoTargets
	}
	return targets[rng.Intn(len(targets))], nil
}

// HuntStrategy biases toward cells adjacent to the player's own unresolved
// hits before falling back to random search. Difficulty scales how often the
// bias is applied, so low tiers still fire wildly some of the time.
type HuntStrategy struct{}

func (HuntStrategy) Name() string { return "hunt" }

func (h HuntStrategy) ChooseTarget(b *board.Board, p *Player, rng *rand.Rand) (world.Coord, error) {
	if rng.Float64() < p.Difficulty {
		if c, ok := h.huntTarget(b, p, rng); ok {
			return c, nil
		}
	}
	return RandomStrategy{}.ChooseTarget(b, p, rng)
}

// huntTarget looks for a legal neighbor of a cell this player has hit but
// not yet seen sunk. Sunk ships have all their cells in the dont-shoot set,
// so their neighborhoods drop out of the hunt on their own.
func (HuntStrategy) huntTarget(b *board.Board, p *Player, rng *rand.Rand) (world.Coord, bool) {
	var candidates []world.Coord
	for _, shot := range b.Shots() {
		if shot.AttackerID != p.ID || shot.Result != board.ResultHit {
			continue
		}
		for _, d := range [4]world.Coord{{Row: -1}, {Row: 1}, {Col: -1}, {Col: 1}} {
			n := world.Coord{Row: shot.Coord.Row + d.Row, Col: shot.Coord.Col + d.Col}
			if p.CanShootAt(b, n) {
				candidates = append(candidates, n)
			}
		}
	}
	if len(candidates) == 0 {
		return world.Coord{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// StrategyByName returns the strategy registered under the given tag.
// Unknown tags fall back to the baseline.
func StrategyByName(name string) Strategy {
	switch name {
	case "hunt":
		return HuntStrategy{}
	default:
		return RandomStrategy{}
	}
}
