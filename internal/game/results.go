// Result payloads for the statistics collaborator, produced once the match
// finishes. The core does not persist these itself.
package game

import (
	"github.com/talgya/broadside/internal/player"
)

// PlayerResult is the per-player outcome consumed by an external stats or
// leaderboard service.
type PlayerResult struct {
	PlayerID  string  `json:"player_id"`
	Name      string  `json:"name"`
	Human     bool    `json:"human"`
	Alliance  string  `json:"alliance"`
	Shots     int     `json:"shots"`
	Hits      int     `json:"hits"`
	Misses    int     `json:"misses"`
	ShipsSunk int     `json:"ships_sunk"`
	ShipsLost int     `json:"ships_lost"`
	Accuracy  float64 `json:"accuracy"`
	Score     int     `json:"score"`
	Won       bool    `json:"won"`
}

// Results returns the per-player result payloads. Valid once the match is
// finished; earlier calls report an error.
func (g *Game) Results() ([]PlayerResult, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateFinished {
		return nil, statef("results requested during %s", StateName(g.state))
	}
	out := make([]PlayerResult, 0, len(g.players))
	for _, p := range g.players {
		out = append(out, PlayerResult{
			PlayerID:  p.ID.String(),
			Name:      p.Name,
			Human:     p.Kind == player.Human,
			Alliance:  p.AllianceID,
			Shots:     p.Shots,
			Hits:      p.Hits,
			Misses:    p.Misses,
			ShipsSunk: p.Sunk,
			ShipsLost: p.Lost,
			Accuracy:  p.Accuracy(),
			Score:     p.Score,
			Won:       p.AllianceID == g.winner,
		})
	}
	return out, nil
}

// StatLine is one row of the live match statistics view. PlayerID is the
// handle an HTTP client uses to submit actions for that player.
type StatLine struct {
	PlayerID    string  `json:"player_id"`
	Name        string  `json:"name"`
	Alliance    string  `json:"alliance"`
	Shots       int     `json:"shots"`
	Hits        int     `json:"hits"`
	Misses      int     `json:"misses"`
	Sunk        int     `json:"sunk"`
	Score       int     `json:"score"`
	Accuracy    float64 `json:"accuracy"`
	ShipsAfloat int     `json:"ships_afloat"`
}

// GameStats is the live observable state summary.
type GameStats struct {
	GameID        string     `json:"game_id"`
	Era           string     `json:"era"`
	State         string     `json:"state"`
	Turn          int        `json:"turn"`
	CurrentPlayer string     `json:"current_player"`
	Winner        string     `json:"winner,omitempty"`
	Players       []StatLine `json:"players"`
}

// Stats returns the live match statistics.
func (g *Game) Stats() GameStats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	stats := GameStats{
		GameID:        g.ID.String(),
		Era:           g.Era,
		State:         StateName(g.state),
		Turn:          g.turnCount,
		CurrentPlayer: g.currentPlayer().Name,
		Winner:        g.winner,
	}
	for _, p := range g.players {
		afloat := 0
		for _, s := range p.Fleet.Ships {
			if !s.IsSunk() {
				afloat++
			}
		}
		stats.Players = append(stats.Players, StatLine{
			PlayerID:    p.ID.String(),
			Name:        p.Name,
			Alliance:    p.AllianceID,
			Shots:       p.Shots,
			Hits:        p.Hits,
			Misses:      p.Misses,
			Sunk:        p.Sunk,
			Score:       p.Score,
			Accuracy:    p.Accuracy(),
			ShipsAfloat: afloat,
		})
	}
	return stats
}
