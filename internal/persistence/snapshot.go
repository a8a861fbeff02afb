// Package persistence saves and restores world state: a JSON snapshot file
// with a stable schema, and a SQLite store for snapshots and turn reports.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/talgya/civsim/internal/agents"
	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/engine"
	"github.com/talgya/civsim/internal/entropy"
	"github.com/talgya/civsim/internal/social"
	"github.com/talgya/civsim/internal/world"
)

// ErrPersistence marks a failed save or load.
var ErrPersistence = errors.New("persistence failure")

// Snapshot is the persisted world state. The random stream position is not
// part of it: a restored world continues on whatever stream it is given.
type Snapshot struct {
	Turn   int          `json:"turn"`
	Size   int          `json:"size"`
	Grid   []string     `json:"grid"`
	Cities []CityRecord `json:"cities"`
	Units  []UnitRecord `json:"units"`
}

// CityRecord is one persisted city.
type CityRecord struct {
	Name       string       `json:"name"`
	X          int          `json:"x"`
	Y          int          `json:"y"`
	Population int          `json:"population"`
	Production int          `json:"production"`
	Terrain    string       `json:"terrain"`
	Buildings  []string     `json:"buildings"`
	Resources  economy.Pool `json:"resources"`
}

// UnitRecord is one persisted unit.
type UnitRecord struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Movement  int    `json:"movement"`
	OwnerCity string `json:"ownerCity"`
}

// Capture records the current state of w.
func Capture(w *engine.World) Snapshot {
	snap := Snapshot{
		Turn:   w.Turn,
		Size:   w.Grid.Size(),
		Grid:   w.Grid.Rows(),
		Cities: make([]CityRecord, 0, len(w.Cities)),
		Units:  make([]UnitRecord, 0, len(w.Units)),
	}
	for _, c := range w.Cities {
		rec := CityRecord{
			Name:       c.Name,
			X:          c.Position.X,
			Y:          c.Position.Y,
			Population: c.Population,
			Production: c.Production,
			Terrain:    c.Terrain.String(),
			Buildings:  make([]string, 0, len(c.Buildings)),
			Resources:  c.Resources,
		}
		for _, k := range c.BuildingKinds() {
			rec.Buildings = append(rec.Buildings, string(k))
		}
		snap.Cities = append(snap.Cities, rec)
	}
	for _, u := range w.Units {
		snap.Units = append(snap.Units, UnitRecord{
			Name:      u.Name,
			Kind:      u.Kind,
			X:         u.Position.X,
			Y:         u.Position.Y,
			Movement:  u.Movement,
			OwnerCity: u.OwnerCity,
		})
	}
	return snap
}

// Restore rebuilds a world from the snapshot. Building names are resolved
// against catalog; rng becomes the world's random stream.
func (s Snapshot) Restore(catalog economy.Catalog, rng entropy.Source) (*engine.World, error) {
	grid, err := world.ParseRows(s.Grid)
	if err != nil {
		return nil, fmt.Errorf("%w: grid: %v", ErrPersistence, err)
	}
	if grid.Size() != s.Size {
		return nil, fmt.Errorf("%w: grid has %d rows, size says %d", ErrPersistence, grid.Size(), s.Size)
	}

	w := &engine.World{
		Grid:    grid,
		Turn:    s.Turn,
		Catalog: catalog,
		Rng:     rng,
	}
	for _, rec := range s.Cities {
		terrain, err := world.ParseTerrain(rec.Terrain)
		if err != nil {
			return nil, fmt.Errorf("%w: city %s: %v", ErrPersistence, rec.Name, err)
		}
		c := &social.City{
			Name:       rec.Name,
			Position:   world.Coord{X: rec.X, Y: rec.Y},
			Population: rec.Population,
			Production: rec.Production,
			Terrain:    terrain,
			Resources:  rec.Resources,
		}
		for _, name := range rec.Buildings {
			b, ok := catalog.Lookup(economy.BuildingKind(name))
			if !ok {
				return nil, fmt.Errorf("%w: city %s: unknown building %q", ErrPersistence, rec.Name, name)
			}
			if c.Owns(b.Kind) {
				return nil, fmt.Errorf("%w: city %s: duplicate building %q", ErrPersistence, rec.Name, name)
			}
			c.Buildings = append(c.Buildings, b)
		}
		w.Cities = append(w.Cities, c)
	}
	for _, rec := range s.Units {
		w.Units = append(w.Units, &agents.Unit{
			Name:      rec.Name,
			Kind:      rec.Kind,
			Position:  world.Coord{X: rec.X, Y: rec.Y},
			Movement:  rec.Movement,
			OwnerCity: rec.OwnerCity,
		})
	}

	if len(w.Cities) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 cities, got %d", ErrPersistence, len(w.Cities))
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return w, nil
}

// RestoreInto replaces the state of dst with the snapshot. dst is left
// untouched if the snapshot cannot be restored. The catalog and random stream
// of dst are kept; everything else comes from the snapshot.
func RestoreInto(dst *engine.World, s Snapshot) error {
	w, err := s.Restore(dst.Catalog, dst.Rng)
	if err != nil {
		return err
	}
	*dst = *w
	return nil
}

// Encode writes the snapshot as indented JSON.
func Encode(out io.Writer, s Snapshot) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", ErrPersistence, err)
	}
	return nil
}

// Decode reads a snapshot.
func Decode(in io.Reader) (Snapshot, error) {
	var s Snapshot
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode snapshot: %v", ErrPersistence, err)
	}
	return s, nil
}

// SaveFile writes the captured world to path, replacing it atomically.
func SaveFile(path string, w *engine.World) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir: %v", ErrPersistence, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrPersistence, err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, Capture(w)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrPersistence, err)
	}
	return nil
}

// LoadFile reads a snapshot from path.
func LoadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: open: %v", ErrPersistence, err)
	}
	defer f.Close()
	return Decode(f)
}
