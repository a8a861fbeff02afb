// City placement and unit spawn cells.
package world

import "github.com/talgya/civsim/internal/entropy"

// PlaceCities picks n pairwise distinct cells. Each cell is drawn as x then y;
// a cell that collides with an earlier pick is redrawn.
func PlaceCities(g *Grid, n int, rng entropy.Source) []Coord {
	taken := make(map[Coord]bool, n)
	coords := make([]Coord, 0, n)
	for len(coords) < n && len(coords) < g.size*g.size {
		c := Coord{X: rng.Intn(g.size), Y: rng.Intn(g.size)}
		if taken[c] {
			continue
		}
		taken[c] = true
		coords = append(coords, c)
	}
	return coords
}

// AdjacentCell returns the first in-bounds orthogonal neighbour of c, trying
// east, west, south, north. A 1×1 grid has no neighbour and yields c itself.
func AdjacentCell(g *Grid, c Coord) Coord {
	for _, n := range c.Neighbors() {
		if g.InBounds(n) {
			return n
		}
	}
	return c
}
