// Attack resolution: footprint eligibility, munition consumption, per-cell
// damage or reveal, statistics, turn continuation, and win re-evaluation.
package game

import (
	"strings"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/fleet"
	"github.com/talgya/broadside/internal/player"
	"github.com/talgya/broadside/internal/world"
)

// scatterOffsets is the plus-shaped footprint of a scatter shot.
var scatterOffsets = [5]world.Coord{
	{Row: 0, Col: 0},
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// starShellRadius is the square reveal radius of a star shell.
const starShellRadius = 1

func (g *Game) fire(p *player.Player, a Action) (*Result, error) {
	if g.state != StatePlaying {
		return nil, statef("fire attempted during %s", StateName(g.state))
	}
	if g.currentPlayer() != p {
		return nil, statef("it is not %q's turn", p.Name)
	}

	switch a.Munition {
	case MunitionShot:
		return g.fireSingle(p, a.Target, MunitionShot)
	case MunitionTorpedo:
		return g.fireTorpedo(p, a.Target)
	case MunitionStarShell:
		return g.fireStarShell(p, a.Target)
	case MunitionScatterShot:
		return g.fireScatterShot(p, a.Target)
	default:
		return nil, validationf("unknown munition %d", a.Munition)
	}
}

// fireSingle resolves a plain shot or an already-validated torpedo at one
// cell, then runs the shared continuation and win logic.
func (g *Game) fireSingle(p *player.Player, target world.Coord, m Munition) (*Result, error) {
	if err := g.checkTarget(p, target); err != nil {
		return nil, err
	}
	rep := g.resolveCell(p, target)
	ev := g.logEvent("%s fires a %s at %v: %s",
		p.Name, MunitionName(m), target, board.ResultName(rep.Result))
	return g.finishAttack(p, []CellReport{rep}, ev), nil
}

func (g *Game) fireTorpedo(p *player.Player, target world.Coord) (*Result, error) {
	if err := g.checkTarget(p, target); err != nil {
		return nil, err
	}
	sub := p.Submarine()
	if sub == nil {
		return nil, &ResourceExhaustedError{Resource: "torpedoes"}
	}
	// The torpedo comes from that submarine's inventory, not a player pool.
	sub.Torpedoes--
	rep := g.resolveCell(p, target)
	ev := g.logEvent("%s launches a torpedo from %s at %v: %s",
		p.Name, sub.Name, target, board.ResultName(rep.Result))
	return g.finishAttack(p, []CellReport{rep}, ev), nil
}

// fireStarShell reveals occupancy over an area without damaging anything.
// It writes no hit or miss outcome, but consumes its resource and advances
// the turn like an ordinary action.
func (g *Game) fireStarShell(p *player.Player, target world.Coord) (*Result, error) {
	if !g.board.IsValidAttackTarget(target) {
		return nil, validationf("cell %v is not a valid attack target", target)
	}
	if p.StarShells <= 0 {
		return nil, &ResourceExhaustedError{Resource: "star shells"}
	}
	p.StarShells--

	var cells []CellReport
	occupied := 0
	for dr := -starShellRadius; dr <= starShellRadius; dr++ {
		for dc := -starShellRadius; dc <= starShellRadius; dc++ {
			c := world.Coord{Row: target.Row + dr, Col: target.Col + dc}
			if !g.board.IsValidAttackTarget(c) {
				continue
			}
			occ := len(g.board.OccupantsAt(c)) > 0
			if occ {
				occupied++
			}
			cells = append(cells, CellReport{Coord: c, Revealed: true, Occupied: occ})
		}
	}
	ev := g.logEvent("%s fires a star shell over %v, revealing %d occupied cells",
		p.Name, target, occupied)
	return g.finishAttack(p, cells, ev), nil
}

func (g *Game) fireScatterShot(p *player.Player, target world.Coord) (*Result, error) {
	// Footprint eligibility: at least one cell of the pattern must be
	// shootable. Cells already in the dont-shoot set are skipped, never
	// re-resolved.
	var footprint []world.Coord
	for _, d := range scatterOffsets {
		c := world.Coord{Row: target.Row + d.Row, Col: target.Col + d.Col}
		if p.CanShootAt(g.board, c) {
			footprint = append(footprint, c)
		}
	}
	if len(footprint) == 0 {
		return nil, validationf("scatter shot at %v covers no shootable cells", target)
	}
	if p.ScatterShot <= 0 {
		return nil, &ResourceExhaustedError{Resource: "scatter shot"}
	}
	p.ScatterShot--

	var cells []CellReport
	var outcomes []string
	for _, c := range footprint {
		rep := g.resolveCell(p, c)
		cells = append(cells, rep)
		outcomes = append(outcomes, board.ResultName(rep.Result))
	}
	ev := g.logEvent("%s fires scatter shot at %v: %s",
		p.Name, target, strings.Join(outcomes, ", "))
	return g.finishAttack(p, cells, ev), nil
}

// checkTarget validates a single-cell footprint against the board and the
// player's dont-shoot set. No mutation on failure.
func (g *Game) checkTarget(p *player.Player, c world.Coord) error {
	if !g.board.IsValidAttackTarget(c) {
		return validationf("cell %v is not a valid attack target", c)
	}
	if p.IsUnshootable(c) {
		return validationf("cell %v is in %q's dont-shoot set", c, p.Name)
	}
	return nil
}

// resolveCell applies one affected cell: a miss on empty water, otherwise
// damage to every occupant entry at the cell.
func (g *Game) resolveCell(p *player.Player, c world.Coord) CellReport {
	occupants := g.board.OccupantsAt(c)
	if len(occupants) == 0 {
		g.board.RecordShot(c, p.ID, board.ResultMiss)
		p.RecordShotOutcome(board.ResultMiss)
		p.MarkUnshootable(c)
		return CellReport{Coord: c, Result: board.ResultMiss}
	}

	best := board.ResultAlreadyHit
	for _, occ := range occupants {
		ship := g.arena.Ship(occ.ShipIdx)
		var result board.ShotResult
		switch ship.Hit(occ.CellIdx) {
		case fleet.OutcomeHit:
			result = board.ResultHit
		case fleet.OutcomeAlreadyHit:
			result = board.ResultAlreadyHit
		case fleet.OutcomeSunk:
			result = board.ResultSunk
		}
		g.board.RecordShot(c, p.ID, result)

		if result == board.ResultSunk {
			defender := g.byID[g.arena.Owner(occ.ShipIdx)]
			if defender != nil {
				defender.Lost++
			}
			// Dead ships are never worth re-targeting.
			for _, cell := range ship.Cells {
				p.MarkUnshootable(cell)
			}
			g.logEvent("%s is sunk", ship.Name)
		}
		if resultRank(result) > resultRank(best) {
			best = result
		}
	}
	p.RecordShotOutcome(best)
	return CellReport{Coord: c, Result: best}
}

// resultRank orders outcomes by severity for multi-occupant cells.
func resultRank(r board.ShotResult) int {
	switch r {
	case board.ResultSunk:
		return 3
	case board.ResultHit:
		return 2
	case board.ResultAlreadyHit:
		return 1
	default:
		return 0
	}
}

// finishAttack applies turn continuation and win evaluation after the
// cells of one attack are resolved.
func (g *Game) finishAttack(p *player.Player, cells []CellReport, ev EventEntry) *Result {
	hit := false
	for _, c := range cells {
		if c.Result == board.ResultHit || c.Result == board.ResultSunk {
			hit = true
		}
	}

	g.evaluateWin()

	res := &Result{
		Kind:   ActionFire,
		Cells:  cells,
		Event:  ev,
		Winner: g.winner,
	}
	if g.state == StateFinished {
		return res
	}

	keep := (hit && g.rules.TurnOnHit) || (!hit && g.rules.TurnOnMiss)
	if !keep {
		g.advanceTurn()
		res.TurnAdvanced = true
	}
	return res
}
