// Package render draws the map as text: one symbol per cell, space
// separated, with units drawn over cities and cities over terrain.
package render

import (
	"strings"

	"github.com/talgya/civsim/internal/agents"
	"github.com/talgya/civsim/internal/social"
	"github.com/talgya/civsim/internal/world"
)

// Overlay symbols.
const (
	CitySymbol = "#"
	UnitSymbol = "@"
)

// Render returns the map with one line per row.
func Render(g *world.Grid, cities []*social.City, units []*agents.Unit) string {
	overlay := make(map[world.Coord]string, len(cities)+len(units))
	for _, c := range cities {
		overlay[c.Position] = CitySymbol
	}
	for _, u := range units {
		overlay[u.Position] = UnitSymbol
	}

	var b strings.Builder
	cells := make([]string, g.Size())
	for y := 0; y < g.Size(); y++ {
		for x := 0; x < g.Size(); x++ {
			c := world.Coord{X: x, Y: y}
			if sym, ok := overlay[c]; ok {
				cells[x] = sym
				continue
			}
			t, _ := g.Terrain(c)
			cells[x] = t.Symbol()
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Legend describes the symbols used by Render.
func Legend() string {
	return "P=pianura C=collina M=montagna F=foresta #=città @=unità"
}
