// Package era loads era configuration: grid terrain, fleet compositions,
// alliances, game-mode rules, and munition starting balances.
// Eras come from JSON files, from built-in presets, or from procedural
// generation for irregular-coastline maps.
package era

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/talgya/broadside/internal/world"
)

// Rules is the game-mode rule set for one era.
type Rules struct {
	TurnOnHit            bool `json:"turn_on_hit"`  // Shooter keeps the turn after a hit
	TurnOnMiss           bool `json:"turn_on_miss"` // Shooter keeps the turn after a miss (rapid modes)
	SimultaneousFire     bool `json:"simultaneous_fire"`
	PlacementRestriction int  `json:"placement_restriction"` // Centered placement zone side, 0 = whole grid
	AllowFleetOverlap    bool `json:"allow_fleet_overlap"`
	AllowAllianceChoice  bool `json:"allow_alliance_choice"` // Player may pick an alliance at game start
}

// Munitions is the per-player starting balance for limited-supply munitions.
type Munitions struct {
	StarShells  int `json:"star_shells"`
	ScatterShot int `json:"scatter_shot"`
}

// ShipSpec describes one ship of a fleet composition.
type ShipSpec struct {
	Name           string   `json:"name"`
	Class          string   `json:"class"`
	Size           int      `json:"size"`
	AllowedTerrain []string `json:"allowed_terrain"`
	Torpedoes      int      `json:"torpedoes"`
}

// AllianceSpec names one alliance of the era.
type AllianceSpec struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerSpec describes one participant slot.
type PlayerSpec struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"` // "human" or "ai"
	Alliance   string  `json:"alliance"`
	Strategy   string  `json:"strategy"` // AI only
	Difficulty float64 `json:"difficulty"`
}

// Config is one complete era configuration.
type Config struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`

	// Terrain is an optional hand-authored map: one string per row, one
	// letter per cell (see terrainLetters). When absent and Generate is set,
	// the grid is produced procedurally; otherwise it is all deep water.
	Terrain  []string         `json:"terrain,omitempty"`
	Generate *world.GenConfig `json:"generate,omitempty"`

	Rules     Rules     `json:"rules"`
	Munitions Munitions `json:"munitions"`

	Alliances []AllianceSpec `json:"alliances"`
	Players   []PlayerSpec   `json:"players"`

	// Fleets maps alliance ID to that side's fleet composition.
	Fleets map[string][]ShipSpec `json:"fleets"`
}

var terrainLetters = map[byte]world.Terrain{
	'd': world.TerrainDeep,
	's': world.TerrainShallow,
	'o': world.TerrainShoal,
	'm': world.TerrainMarsh,
	'l': world.TerrainLand,
	'r': world.TerrainRock,
	'x': world.TerrainExcluded,
}

// Load reads and validates an era configuration from a JSON file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read era config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse era config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("era %q: %w", cfg.Name, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return fmt.Errorf("grid is %dx%d, need positive dimensions", c.Rows, c.Cols)
	}
	if len(c.Alliances) < 2 {
		return fmt.Errorf("need at least 2 alliances, have %d", len(c.Alliances))
	}
	if len(c.Players) < 2 {
		return fmt.Errorf("need at least 2 players, have %d", len(c.Players))
	}
	allianceIDs := make(map[string]bool, len(c.Alliances))
	for _, a := range c.Alliances {
		if a.ID == "" {
			return fmt.Errorf("alliance %q has empty id", a.Name)
		}
		allianceIDs[a.ID] = true
	}
	for _, p := range c.Players {
		if p.Kind != "human" && p.Kind != "ai" {
			return fmt.Errorf("player %q has unknown kind %q", p.Name, p.Kind)
		}
		if !allianceIDs[p.Alliance] {
			return fmt.Errorf("player %q references unknown alliance %q", p.Name, p.Alliance)
		}
	}
	for id, ships := range c.Fleets {
		if !allianceIDs[id] {
			return fmt.Errorf("fleet composition references unknown alliance %q", id)
		}
		for _, s := range ships {
			if s.Size <= 0 {
				return fmt.Errorf("ship %q has size %d", s.Name, s.Size)
			}
			for _, t := range s.AllowedTerrain {
				if _, err := world.ParseTerrain(t); err != nil {
					return fmt.Errorf("ship %q: %w", s.Name, err)
				}
			}
		}
	}
	if len(c.Terrain) > 0 {
		if len(c.Terrain) != c.Rows {
			return fmt.Errorf("terrain has %d rows, want %d", len(c.Terrain), c.Rows)
		}
		for r, row := range c.Terrain {
			if len(row) != c.Cols {
				return fmt.Errorf("terrain row %d has %d cells, want %d", r, len(row), c.Cols)
			}
			for i := 0; i < len(row); i++ {
				if _, ok := terrainLetters[row[i]]; !ok {
					return fmt.Errorf("terrain row %d: unknown letter %q", r, string(row[i]))
				}
			}
		}
	}
	return nil
}

// BuildGrid produces the match grid: hand-authored terrain when present,
// procedural generation when configured, all deep water otherwise.
func (c *Config) BuildGrid() (*world.Grid, error) {
	if len(c.Terrain) > 0 {
		cells := make([][]world.Terrain, c.Rows)
		for r, row := range c.Terrain {
			cells[r] = make([]world.Terrain, c.Cols)
			for i := 0; i < len(row); i++ {
				cells[r][i] = terrainLetters[row[i]]
			}
		}
		return world.FromMatrix(cells)
	}
	if c.Generate != nil {
		gen := *c.Generate
		gen.Rows = c.Rows
		gen.Cols = c.Cols
		return world.Generate(gen), nil
	}
	return world.NewGrid(c.Rows, c.Cols, world.TerrainDeep), nil
}

// TerrainSet resolves a ship spec's allowed-terrain list.
// An empty list means open water only.
func (s ShipSpec) TerrainSet() (world.TerrainSet, error) {
	if len(s.AllowedTerrain) == 0 {
		return world.OpenWater, nil
	}
	var set world.TerrainSet
	for _, name := range s.AllowedTerrain {
		t, err := world.ParseTerrain(strings.TrimSpace(name))
		if err != nil {
			return 0, err
		}
		set = set.With(t)
	}
	return set, nil
}
