// Built-in era presets for play without an external configuration file.
package era

import "github.com/talgya/broadside/internal/world"

var coastalHull = []string{"deep", "shallow"}
var shallowHull = []string{"deep", "shallow", "shoal"}
var marshHull = []string{"deep", "shallow", "shoal", "marsh"}

// classicFleet is the traditional five-ship composition on open water.
func classicFleet() []ShipSpec {
	return []ShipSpec{
		{Name: "Carrier", Class: "carrier", Size: 5, AllowedTerrain: []string{"deep"}},
		{Name: "Battleship", Class: "battleship", Size: 4, AllowedTerrain: coastalHull},
		{Name: "Cruiser", Class: "cruiser", Size: 3, AllowedTerrain: coastalHull},
		{Name: "Submarine", Class: "submarine", Size: 3, AllowedTerrain: coastalHull, Torpedoes: 2},
		{Name: "Destroyer", Class: "destroyer", Size: 2, AllowedTerrain: shallowHull},
	}
}

// Classic returns the traditional 10x10 open-water duel: two alliances, one
// player each, turn passes on every shot.
func Classic() *Config {
	return &Config{
		Name: "classic",
		Rows: 10,
		Cols: 10,
		Rules: Rules{
			TurnOnHit:  false,
			TurnOnMiss: false,
		},
		Munitions: Munitions{StarShells: 2, ScatterShot: 1},
		Alliances: []AllianceSpec{
			{ID: "north", Name: "Northern Fleet"},
			{ID: "south", Name: "Southern Fleet"},
		},
		Players: []PlayerSpec{
			{Name: "Admiral North", Kind: "ai", Alliance: "north", Strategy: "hunt", Difficulty: 0.8},
			{Name: "Admiral South", Kind: "ai", Alliance: "south", Strategy: "random", Difficulty: 0.3},
		},
		Fleets: map[string][]ShipSpec{
			"north": classicFleet(),
			"south": classicFleet(),
		},
	}
}

// Archipelago returns a procedurally generated 14x14 map with shoals,
// marshes, and an irregular coastline. Rapid rules: the shooter keeps the
// turn after a hit.
func Archipelago(seed int64) *Config {
	return &Config{
		Name: "archipelago",
		Rows: 14,
		Cols: 14,
		Generate: &world.GenConfig{
			Seed:       seed,
			DeepLevel:  0.45,
			LandLevel:  0.78,
			CoastCurve: 3.0,
		},
		Rules: Rules{
			TurnOnHit: true,
		},
		Munitions: Munitions{StarShells: 3, ScatterShot: 2},
		Alliances: []AllianceSpec{
			{ID: "corsairs", Name: "Corsair Compact"},
			{ID: "navy", Name: "Admiralty"},
		},
		Players: []PlayerSpec{
			{Name: "Corsair Captain", Kind: "ai", Alliance: "corsairs", Strategy: "hunt", Difficulty: 0.7},
			{Name: "Fleet Admiral", Kind: "ai", Alliance: "navy", Strategy: "hunt", Difficulty: 0.7},
		},
		Fleets: map[string][]ShipSpec{
			"corsairs": archipelagoFleet(),
			"navy":     archipelagoFleet(),
		},
	}
}

// archipelagoFleet trades the carrier for shallow-draft hulls that can use
// the terrain.
func archipelagoFleet() []ShipSpec {
	return []ShipSpec{
		{Name: "Battleship", Class: "battleship", Size: 4, AllowedTerrain: coastalHull},
		{Name: "Cruiser", Class: "cruiser", Size: 3, AllowedTerrain: coastalHull},
		{Name: "Submarine", Class: "submarine", Size: 3, AllowedTerrain: coastalHull, Torpedoes: 3},
		{Name: "Destroyer", Class: "destroyer", Size: 2, AllowedTerrain: shallowHull},
		{Name: "Gunboat", Class: "patrol-boat", Size: 1, AllowedTerrain: marshHull},
	}
}

// Preset returns a built-in era by name, or nil.
func Preset(name string, seed int64) *Config {
	switch name {
	case "classic":
		return Classic()
	case "archipelago":
		return Archipelago(seed)
	default:
		return nil
	}
}
