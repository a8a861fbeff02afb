package economy

import "fmt"

// BuildingKind identifies a constructible building.
type BuildingKind string

const (
	BuildingMill   BuildingKind = "mill"
	BuildingMarket BuildingKind = "market"
)

// Building describes what a building grants: a one-time bonus applied when it
// is constructed and a recurring yield applied every turn it is owned.
type Building struct {
	Kind BuildingKind

	// One-time construction bonus.
	Production int
	Population int

	// Per-turn yield.
	Yield Pool
}

// Catalog is the ordered list of buildings a city may construct.
type Catalog []Building

// DefaultCatalog returns the standard building set.
func DefaultCatalog() Catalog {
	return Catalog{
		{Kind: BuildingMill, Population: 100, Yield: Pool{Food: 10}},
		{Kind: BuildingMarket, Production: 2, Yield: Pool{Gold: 10}},
	}
}

// Lookup returns the catalog entry for kind.
func (c Catalog) Lookup(kind BuildingKind) (Building, bool) {
	for _, b := range c {
		if b.Kind == kind {
			return b, true
		}
	}
	return Building{}, false
}

// Validate checks the catalog for duplicate or empty kinds.
func (c Catalog) Validate() error {
	seen := make(map[BuildingKind]bool, len(c))
	for i, b := range c {
		if b.Kind == "" {
			return fmt.Errorf("catalog entry %d has no kind", i)
		}
		if seen[b.Kind] {
			return fmt.Errorf("duplicate catalog entry %q", b.Kind)
		}
		seen[b.Kind] = true
	}
	return nil
}
