// World holds the complete game state the turn engine mutates.
package engine

import (
	"fmt"

	"github.com/talgya/civsim/internal/agents"
	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/entropy"
	"github.com/talgya/civsim/internal/social"
	"github.com/talgya/civsim/internal/world"
)

// Starting values for newly founded cities.
const (
	StartPopulation = 1000
	StartProduction = 10
)

// DefaultCityNames are the two sides of a standard game, in turn order.
var DefaultCityNames = []string{"Citta 1", "Citta 2"}

// World owns the grid, the cities in turn order, the active unit roster and
// the random stream. The turn engine is its only writer.
type World struct {
	Grid    *world.Grid
	Cities  []*social.City
	Units   []*agents.Unit
	Turn    int // Next turn to resolve, starting at 1
	Catalog economy.Catalog
	Rng     entropy.Source
}

// WorldConfig holds world construction parameters.
type WorldConfig struct {
	Gen        world.GenConfig
	CityNames  []string
	Population int
	Production int
	Catalog    economy.Catalog
}

// DefaultWorldConfig returns the standard two-city setup.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gen:        world.DefaultGenConfig(),
		CityNames:  DefaultCityNames,
		Population: StartPopulation,
		Production: StartProduction,
		Catalog:    economy.DefaultCatalog(),
	}
}

// NewWorld generates the grid, founds one city per name on distinct random
// cells and places a unit next to each. Draw order: grid cells, then each
// city's x and y.
func NewWorld(cfg WorldConfig, rng entropy.Source) (*World, error) {
	if len(cfg.CityNames) < 2 {
		return nil, fmt.Errorf("need at least 2 cities, got %d", len(cfg.CityNames))
	}
	if cfg.Gen.Size*cfg.Gen.Size < len(cfg.CityNames) {
		return nil, fmt.Errorf("grid of size %d cannot hold %d cities", cfg.Gen.Size, len(cfg.CityNames))
	}
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	grid := world.GenerateFromConfig(cfg.Gen, rng)
	coords := world.PlaceCities(grid, len(cfg.CityNames), rng)

	w := &World{
		Grid:    grid,
		Turn:    1,
		Catalog: cfg.Catalog,
		Rng:     rng,
	}
	for i, name := range cfg.CityNames {
		c, err := social.NewCity(name, coords[i], grid, cfg.Population, cfg.Production)
		if err != nil {
			return nil, err
		}
		w.Cities = append(w.Cities, c)
		w.Units = append(w.Units, agents.NewUnit(
			fmt.Sprintf("Guerriero %d", i+1), name, world.AdjacentCell(grid, coords[i]),
		))
	}
	return w, nil
}

// City returns the city with the given name.
func (w *World) City(name string) (*social.City, bool) {
	for _, c := range w.Cities {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// UnitOf returns the active unit owned by the named city.
func (w *World) UnitOf(city string) (*agents.Unit, bool) {
	for _, u := range w.Units {
		if u.OwnerCity == city {
			return u, true
		}
	}
	return nil, false
}

// Enemy returns the rival of the city at index i: the next city in turn order.
func (w *World) Enemy(i int) *social.City {
	return w.Cities[(i+1)%len(w.Cities)]
}

// Clone returns a deep copy of the world sharing the grid, catalog and
// random stream.
func (w *World) Clone() *World {
	cp := &World{
		Grid:    w.Grid,
		Turn:    w.Turn,
		Catalog: w.Catalog,
		Rng:     w.Rng,
	}
	for _, c := range w.Cities {
		cp.Cities = append(cp.Cities, c.Clone())
	}
	for _, u := range w.Units {
		cp.Units = append(cp.Units, u.Clone())
	}
	return cp
}

// Validate checks every world invariant.
func (w *World) Validate() error {
	if w.Turn < 1 {
		return &InvariantError{Turn: w.Turn, Invariant: InvariantTurn, Detail: fmt.Sprintf("turn %d", w.Turn)}
	}
	for _, c := range w.Cities {
		if err := c.Validate(); err != nil {
			return &InvariantError{Turn: w.Turn, Invariant: InvariantResources, Detail: err.Error()}
		}
		if !w.Grid.InBounds(c.Position) {
			return &InvariantError{Turn: w.Turn, Invariant: InvariantPosition,
				Detail: fmt.Sprintf("city %s at (%d, %d)", c.Name, c.Position.X, c.Position.Y)}
		}
	}
	for _, u := range w.Units {
		if !w.Grid.InBounds(u.Position) {
			return &InvariantError{Turn: w.Turn, Invariant: InvariantPosition,
				Detail: fmt.Sprintf("unit %s at (%d, %d)", u.Name, u.Position.X, u.Position.Y)}
		}
		if _, ok := w.City(u.OwnerCity); !ok {
			return &InvariantError{Turn: w.Turn, Invariant: InvariantRoster,
				Detail: fmt.Sprintf("unit %s owned by unknown city %q", u.Name, u.OwnerCity)}
		}
	}
	return nil
}
