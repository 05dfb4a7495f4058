// Procedural grid generation using layered simplex noise.
// Generates a depth map, then derives terrain bands and an irregular
// coastline of excluded cells so eras are not limited to hand-authored maps.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds grid generation parameters.
type GenConfig struct {
	Rows       int     `json:"rows"`
	Cols       int     `json:"cols"`
	Seed       int64   `json:"seed"`        // 0 = random
	DeepLevel  float64 `json:"deep_level"`  // Depth threshold below which water is deep
	LandLevel  float64 `json:"land_level"`  // Elevation threshold above which cells are land
	CoastCurve float64 `json:"coast_curve"` // Edge falloff exponent shaping the excluded fringe
}

// DefaultGenConfig returns a mid-sized open-sea map with scattered hazards.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Rows:       14,
		Cols:       14,
		Seed:       0,
		DeepLevel:  0.45,
		LandLevel:  0.78,
		CoastCurve: 3.0,
	}
}

// Generate creates a terrain grid from the configuration.
// The same seed always produces the same grid.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Independent layers: elevation shapes depth bands, silt shapes
	// shoal/marsh placement inside the shallow band.
	elevNoise := opensimplex.NewNormalized(seed)
	siltNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Rows, cfg.Cols, TerrainDeep)

	halfR := float64(cfg.Rows-1) / 2
	halfC := float64(cfg.Cols-1) / 2

	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			x := float64(c)
			y := float64(r)

			elev := octaveNoise(elevNoise, x, y, 4, 0.12, 0.5)
			silt := octaveNoise(siltNoise, x, y, 3, 0.09, 0.5)

			// Radial falloff: raise elevation near the rectangle edges so the
			// playable sea sits inside an irregular coastline.
			dr := (y - halfR) / (halfR + 1)
			dc := (x - halfC) / (halfC + 1)
			dist := math.Sqrt(dr*dr + dc*dc)
			edge := math.Pow(dist, cfg.CoastCurve)
			elev = elev*(1-edge) + edge

			g.SetTerrain(Coord{Row: r, Col: c}, deriveTerrain(elev, silt, cfg))
		}
	}

	// Post-pass: cells of land fully surrounded by land become excluded —
	// they are outside the playable board, not obstacles on it.
	markExcludedInterior(g)

	return g
}

// deriveTerrain maps elevation and silt to a terrain band.
func deriveTerrain(elev, silt float64, cfg GenConfig) Terrain {
	if elev >= cfg.LandLevel {
		if elev > cfg.LandLevel+0.12 && silt < 0.4 {
			return TerrainRock
		}
		return TerrainLand
	}
	if elev < cfg.DeepLevel {
		return TerrainDeep
	}
	// Shallow band, broken up by silt deposits.
	if silt > 0.72 {
		return TerrainMarsh
	}
	if silt > 0.55 {
		return TerrainShoal
	}
	return TerrainShallow
}

var neighborOffsets = [4]Coord{
	{Row: -1, Col: 0},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
	{Row: 0, Col: 1},
}

// markExcludedInterior converts landlocked land cells to excluded.
// Land bordering water stays as terrain so the coastline remains visible.
func markExcludedInterior(g *Grid) {
	var interior []Coord
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			coord := Coord{Row: r, Col: c}
			t := g.At(coord)
			if t != TerrainLand && t != TerrainRock {
				continue
			}
			landlocked := true
			for _, d := range neighborOffsets {
				n := Coord{Row: r + d.Row, Col: c + d.Col}
				if !g.InBounds(n) {
					continue
				}
				switch g.At(n) {
				case TerrainLand, TerrainRock, TerrainExcluded:
				default:
					landlocked = false
				}
			}
			if landlocked {
				interior = append(interior, coord)
			}
		}
	}
	for _, coord := range interior {
		g.SetTerrain(coord, TerrainExcluded)
	}
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
