// Package economy provides the static resource tables: terrain yields,
// building bonuses and the resource pool arithmetic cities use.
package economy

import (
	"fmt"

	"github.com/talgya/civsim/internal/world"
)

// Overflow conversion: every FoodOverflowThreshold food becomes
// OverflowPopulation population.
const (
	FoodOverflowThreshold = 1000
	OverflowPopulation    = 500
)

// Pool holds the three stockpiled resources. All counters are non-negative.
type Pool struct {
	Food int `json:"food"`
	Gold int `json:"gold"`
	Wood int `json:"wood"`
}

// Add credits every counter of o to p.
func (p *Pool) Add(o Pool) {
	p.Food += o.Food
	p.Gold += o.Gold
	p.Wood += o.Wood
}

// Sub debits o from p, clamping each counter at zero.
func (p *Pool) Sub(o Pool) {
	p.Food = clampSub(p.Food, o.Food)
	p.Gold = clampSub(p.Gold, o.Gold)
	p.Wood = clampSub(p.Wood, o.Wood)
}

// Covers reports whether p holds at least o of every resource.
func (p Pool) Covers(o Pool) bool {
	return p.Food >= o.Food && p.Gold >= o.Gold && p.Wood >= o.Wood
}

// Valid reports whether no counter is negative.
func (p Pool) Valid() bool {
	return p.Food >= 0 && p.Gold >= 0 && p.Wood >= 0
}

// DrainFoodOverflow converts food above the threshold into population,
// repeating until food is below it. Returns the population gained.
func (p *Pool) DrainFoodOverflow() int {
	gained := 0
	for p.Food >= FoodOverflowThreshold {
		p.Food -= FoodOverflowThreshold
		gained += OverflowPopulation
	}
	return gained
}

func (p Pool) String() string {
	return fmt.Sprintf("food=%d gold=%d wood=%d", p.Food, p.Gold, p.Wood)
}

// ClampSub subtracts n from v without going below zero.
func ClampSub(v, n int) int {
	return clampSub(v, n)
}

func clampSub(v, n int) int {
	v -= n
	if v < 0 {
		return 0
	}
	return v
}

// terrainYield maps terrain to the per-turn resources a city on it collects.
var terrainYield = map[world.TerrainKind]Pool{
	world.TerrainPlain:    {Food: 20, Gold: 0, Wood: 5},
	world.TerrainHill:     {Food: 10, Gold: 0, Wood: 15},
	world.TerrainMountain: {Food: 5, Gold: 20, Wood: 5},
	world.TerrainForest:   {Food: 10, Gold: 0, Wood: 20},
}

// TerrainYield returns the per-turn yield of a terrain kind.
func TerrainYield(t world.TerrainKind) Pool {
	return terrainYield[t]
}
