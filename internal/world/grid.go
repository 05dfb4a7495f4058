// Package world provides the terrain grid and spatial primitives for one match.
// The grid is rectangular in coordinate space; irregular coastlines are modeled
// by marking cells as excluded.
package world

import "fmt"

// Coord represents a cell position on the grid.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Terrain classifies a single grid cell.
type Terrain uint8

const (
	TerrainDeep     Terrain = iota // Open water — any hull
	TerrainShallow                 // Coastal water — most hulls
	TerrainShoal                   // Sandbars — shallow-draft hulls only
	TerrainMarsh                   // Wetlands — flat-bottom hulls only
	TerrainLand                    // Dry land — no ships
	TerrainRock                    // Reefs and outcrops — no ships
	TerrainExcluded                // Off-board cell inside the rectangle
)

var terrainNames = map[Terrain]string{
	TerrainDeep:     "deep",
	TerrainShallow:  "shallow",
	TerrainShoal:    "shoal",
	TerrainMarsh:    "marsh",
	TerrainLand:     "land",
	TerrainRock:     "rock",
	TerrainExcluded: "excluded",
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	if name, ok := terrainNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTerrain converts a terrain name back to its Terrain value.
func ParseTerrain(name string) (Terrain, error) {
	for t, n := range terrainNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", name)
}

// TerrainSet is a bitmask of terrain types a hull may occupy.
type TerrainSet uint8

// With returns the set extended with the given terrain types.
func (s TerrainSet) With(terrains ...Terrain) TerrainSet {
	for _, t := range terrains {
		s |= 1 << t
	}
	return s
}

// Has reports whether the set contains the given terrain type.
func (s TerrainSet) Has(t Terrain) bool {
	return s&(1<<t) != 0
}

// OpenWater is the permission set for deep-draft hulls.
var OpenWater = TerrainSet(0).With(TerrainDeep)

// CoastalWater additionally allows shallow water.
var CoastalWater = TerrainSet(0).With(TerrainDeep, TerrainShallow)

// ShallowDraft allows everything navigable short of marshland.
var ShallowDraft = TerrainSet(0).With(TerrainDeep, TerrainShallow, TerrainShoal)

// FlatBottom covers every navigable terrain, including marsh.
var FlatBottom = TerrainSet(0).With(TerrainDeep, TerrainShallow, TerrainShoal, TerrainMarsh)

// Grid holds the static per-cell terrain classification for one match.
// Cells are immutable after construction; ships and shots live on the Board.
type Grid struct {
	Rows  int
	Cols  int
	cells [][]Terrain
}

// NewGrid creates a grid with every cell set to the given terrain.
func NewGrid(rows, cols int, fill Terrain) *Grid {
	cells := make([][]Terrain, rows)
	for r := range cells {
		cells[r] = make([]Terrain, cols)
		for c := range cells[r] {
			cells[r][c] = fill
		}
	}
	return &Grid{Rows: rows, Cols: cols, cells: cells}
}

// FromMatrix builds a grid from a prebuilt terrain matrix.
// Every row must have the same length.
func FromMatrix(cells [][]Terrain) (*Grid, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("terrain matrix is empty")
	}
	cols := len(cells[0])
	for r, row := range cells {
		if len(row) != cols {
			return nil, fmt.Errorf("terrain row %d has %d cells, want %d", r, len(row), cols)
		}
	}
	return &Grid{Rows: len(cells), Cols: cols, cells: cells}, nil
}

// SetTerrain overwrites one cell. Only for grid construction; the Board
// treats the grid as immutable.
func (g *Grid) SetTerrain(c Coord, t Terrain) {
	g.cells[c.Row][c.Col] = t
}

// InBounds reports whether the coordinate lies inside the rectangle.
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// At returns the terrain at the given coordinate.
// Out-of-bounds coordinates report excluded terrain.
func (g *Grid) At(c Coord) Terrain {
	if !g.InBounds(c) {
		return TerrainExcluded
	}
	return g.cells[c.Row][c.Col]
}

// IsExcluded reports whether the cell is off-board despite being inside the
// rectangular coordinate space.
func (g *Grid) IsExcluded(c Coord) bool {
	return g.At(c) == TerrainExcluded
}

// TerrainCounts tallies cells by terrain type.
func (g *Grid) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			counts[g.cells[r][c]]++
		}
	}
	return counts
}

// PlayableCells counts cells that are neither excluded nor land nor rock.
func (g *Grid) PlayableCells() int {
	n := 0
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			switch g.cells[r][c] {
			case TerrainExcluded, TerrainLand, TerrainRock:
			default:
				n++
			}
		}
	}
	return n
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, playable=%d)", g.Rows, g.Cols, g.PlayableCells())
}
