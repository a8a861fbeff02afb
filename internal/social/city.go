// Package social provides cities: their economy, construction and the
// scripted city policy.
package social

import (
	"fmt"

	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/entropy"
	"github.com/talgya/civsim/internal/world"
)

// Costs and gains of the two trade actions.
const (
	ProductionCostGold  = 200
	ProductionGain      = 1
	PopulationCostFood  = 500
	PopulationGain      = 50
	ScriptedBuildPeriod = 3 // Scripted cities build on turns divisible by this
)

// City is a population center on the grid.
type City struct {
	Name     string      `json:"name"`
	Position world.Coord `json:"position"`

	Population int               `json:"population"`
	Production int               `json:"production"`
	Terrain    world.TerrainKind `json:"terrain"` // Captured from the grid at creation

	// Owned buildings in construction order, no duplicate kinds.
	Buildings []economy.Building `json:"-"`
	Resources economy.Pool       `json:"resources"`
}

// NewCity creates a city on the given cell, taking its terrain from the grid.
func NewCity(name string, pos world.Coord, g *world.Grid, population, production int) (*City, error) {
	terrain, ok := g.Terrain(pos)
	if !ok {
		return nil, fmt.Errorf("city %s: position (%d, %d) outside grid", name, pos.X, pos.Y)
	}
	return &City{
		Name:       name,
		Position:   pos,
		Population: population,
		Production: production,
		Terrain:    terrain,
	}, nil
}

// Owns reports whether the city already has a building of the given kind.
func (c *City) Owns(kind economy.BuildingKind) bool {
	for _, b := range c.Buildings {
		if b.Kind == kind {
			return true
		}
	}
	return false
}

// BuildingKinds returns owned building kinds in construction order.
func (c *City) BuildingKinds() []economy.BuildingKind {
	kinds := make([]economy.BuildingKind, len(c.Buildings))
	for i, b := range c.Buildings {
		kinds[i] = b.Kind
	}
	return kinds
}

// AccrueResources adds one turn of terrain yield and building yields, then
// converts any food overflow into population. Returns the population gained
// from overflow.
func (c *City) AccrueResources() int {
	c.Resources.Add(economy.TerrainYield(c.Terrain))
	for _, b := range c.Buildings {
		c.Resources.Add(b.Yield)
	}
	gained := c.Resources.DrainFoodOverflow()
	c.Population += gained
	return gained
}

// Construct picks uniformly among catalog entries the city does not own yet,
// adds it and applies its one-time bonus. The second result is false when
// every catalog entry is already built; no randomness is consumed then.
func (c *City) Construct(catalog economy.Catalog, rng entropy.Source) (economy.BuildingKind, bool) {
	var available []economy.Building
	for _, b := range catalog {
		if !c.Owns(b.Kind) {
			available = append(available, b)
		}
	}
	if len(available) == 0 {
		return "", false
	}

	b := available[rng.Intn(len(available))]
	c.Buildings = append(c.Buildings, b)
	c.Production += b.Production
	c.Population += b.Population
	return b.Kind, true
}

// Status returns a one-line summary of the city.
func (c *City) Status() string {
	return fmt.Sprintf("%s - Posizione: (%d, %d), Popolazione: %d, Produzione: %d",
		c.Name, c.Position.X, c.Position.Y, c.Population, c.Production)
}

// Validate checks that no counter has gone negative.
func (c *City) Validate() error {
	if !c.Resources.Valid() {
		return fmt.Errorf("city %s: negative resources (%s)", c.Name, c.Resources)
	}
	if c.Population < 0 {
		return fmt.Errorf("city %s: negative population %d", c.Name, c.Population)
	}
	if c.Production < 0 {
		return fmt.Errorf("city %s: negative production %d", c.Name, c.Production)
	}
	return nil
}

// Clone returns a deep copy of the city.
func (c *City) Clone() *City {
	cp := *c
	cp.Buildings = append([]economy.Building(nil), c.Buildings...)
	return &cp
}
