package world

import "fmt"

// TerrainKind is the land type of a grid cell.
type TerrainKind uint8

const (
	TerrainPlain    TerrainKind = iota // Farmland, high food
	TerrainHill                        // Timber and some food
	TerrainMountain                    // Gold deposits
	TerrainForest                      // Timber
)

// TerrainKinds lists every terrain kind in draw order. Generate indexes into
// this slice, so its order is part of the reproducibility contract.
var TerrainKinds = []TerrainKind{TerrainPlain, TerrainHill, TerrainMountain, TerrainForest}

var terrainNames = map[TerrainKind]string{
	TerrainPlain:    "pianura",
	TerrainHill:     "collina",
	TerrainMountain: "montagna",
	TerrainForest:   "foresta",
}

var terrainSymbols = map[TerrainKind]string{
	TerrainPlain:    "P",
	TerrainHill:     "C",
	TerrainMountain: "M",
	TerrainForest:   "F",
}

// String returns the persisted name of the terrain kind.
func (t TerrainKind) String() string {
	if name, ok := terrainNames[t]; ok {
		return name
	}
	return "unknown"
}

// Symbol returns the single-letter map symbol for the terrain kind.
func (t TerrainKind) Symbol() string {
	if s, ok := terrainSymbols[t]; ok {
		return s
	}
	return "?"
}

// Valid reports whether t is one of the known terrain kinds.
func (t TerrainKind) Valid() bool {
	_, ok := terrainNames[t]
	return ok
}

// ParseTerrain maps a persisted terrain name back to its kind.
func ParseTerrain(name string) (TerrainKind, error) {
	for k, n := range terrainNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", name)
}

// ParseSymbol maps a map symbol back to its terrain kind.
func ParseSymbol(sym byte) (TerrainKind, error) {
	for k, s := range terrainSymbols {
		if s[0] == sym {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown terrain symbol %q", sym)
}

// MarshalText encodes the terrain by name.
func (t TerrainKind) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid terrain kind %d", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a terrain name.
func (t *TerrainKind) UnmarshalText(b []byte) error {
	k, err := ParseTerrain(string(b))
	if err != nil {
		return err
	}
	*t = k
	return nil
}
