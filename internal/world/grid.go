package world

import (
	"fmt"
	"strings"
)

// DefaultSize is the side length of a standard map.
const DefaultSize = 10

// Grid is a square N×N terrain map. It is filled once at creation and never
// mutated afterward.
type Grid struct {
	size  int
	cells []TerrainKind // row-major
}

// NewGrid builds a grid from rows of terrain kinds. Every row must have the
// same length as the number of rows.
func NewGrid(rows [][]TerrainKind) (*Grid, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("grid has no rows")
	}
	g := &Grid{size: n, cells: make([]TerrainKind, 0, n*n)}
	for y, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d cells, want %d", y, len(row), n)
		}
		for x, t := range row {
			if !t.Valid() {
				return nil, fmt.Errorf("cell (%d, %d): invalid terrain %d", x, y, t)
			}
		}
		g.cells = append(g.cells, row...)
	}
	return g, nil
}

// ParseRows builds a grid from rows of terrain symbols, e.g. "PCMF".
func ParseRows(rows []string) (*Grid, error) {
	kinds := make([][]TerrainKind, len(rows))
	for y, row := range rows {
		kinds[y] = make([]TerrainKind, len(row))
		for x := 0; x < len(row); x++ {
			t, err := ParseSymbol(row[x])
			if err != nil {
				return nil, fmt.Errorf("cell (%d, %d): %w", x, y, err)
			}
			kinds[y][x] = t
		}
	}
	return NewGrid(kinds)
}

// Size returns the side length of the grid.
func (g *Grid) Size() int {
	return g.size
}

// InBounds returns true if the coordinate lies on the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.size && c.Y >= 0 && c.Y < g.size
}

// Terrain returns the terrain at c. The second result is false when c is off
// the grid.
func (g *Grid) Terrain(c Coord) (TerrainKind, bool) {
	if !g.InBounds(c) {
		return 0, false
	}
	return g.cells[c.Y*g.size+c.X], true
}

// Rows returns the grid as rows of terrain symbols.
func (g *Grid) Rows() []string {
	rows := make([]string, g.size)
	var b strings.Builder
	for y := 0; y < g.size; y++ {
		b.Reset()
		for x := 0; x < g.size; x++ {
			b.WriteString(g.cells[y*g.size+x].Symbol())
		}
		rows[y] = b.String()
	}
	return rows
}

// Equal reports whether two grids hold the same terrain.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.size != o.size {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// TerrainCounts returns a summary of terrain distribution.
func TerrainCounts(g *Grid) map[TerrainKind]int {
	counts := make(map[TerrainKind]int)
	for _, t := range g.cells {
		counts[t]++
	}
	return counts
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(size=%d, cells=%d)", g.size, len(g.cells))
}
