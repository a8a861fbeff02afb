package persistence

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/engine"
)

func playedWorld(t *testing.T, turns int) *engine.World {
	t.Helper()
	w, err := engine.NewWorld(engine.DefaultWorldConfig(), rand.New(rand.NewSource(77)))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	for i := 0; i < turns; i++ {
		if _, err := engine.RunTurn(context.Background(), w, engine.TurnOptions{}); err != nil {
			t.Fatalf("run turn: %v", err)
		}
	}
	return w
}

func assertSameWorld(t *testing.T, want, got *engine.World) {
	t.Helper()
	if got.Turn != want.Turn {
		t.Fatalf("expected turn %d, got %d", want.Turn, got.Turn)
	}
	if !got.Grid.Equal(want.Grid) {
		t.Fatal("expected identical grids")
	}
	if !reflect.DeepEqual(got.Cities, want.Cities) {
		t.Fatalf("cities differ:\nwant %+v\ngot  %+v", want.Cities, got.Cities)
	}
	if !reflect.DeepEqual(got.Units, want.Units) {
		t.Fatalf("units differ:\nwant %+v\ngot  %+v", want.Units, got.Units)
	}
}

// TestRoundTrip ensures load(save(world)) reproduces every persisted field.
func TestRoundTrip(t *testing.T) {
	w := playedWorld(t, 4) // turn 3 builds
	var buf bytes.Buffer
	if err := Encode(&buf, Capture(w)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	snap, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	back, err := snap.Restore(economy.DefaultCatalog(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	assertSameWorld(t, w, back)
	if len(back.Cities[0].Buildings) == 0 {
		t.Fatal("expected the scripted build turn to have produced a building")
	}
}

func TestSchemaFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Capture(playedWorld(t, 1))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	for _, field := range []string{`"turn"`, `"cities"`, `"units"`, `"population"`, `"production"`,
		`"terrain"`, `"buildings"`, `"resources"`, `"food"`, `"gold"`, `"wood"`, `"kind"`, `"movement"`, `"ownerCity"`} {
		if !strings.Contains(out, field) {
			t.Fatalf("expected field %s in %s", field, out)
		}
	}
}

func TestSaveLoadFile(t *testing.T) {
	w := playedWorld(t, 2)
	path := filepath.Join(t.TempDir(), "nested", "save.json")
	if err := SaveFile(path, w); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	back, err := snap.Restore(w.Catalog, w.Rng)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	assertSameWorld(t, w, back)
}

func TestLoadFileFailures(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

// TestRestoreIntoLeavesWorldOnFailure ensures a bad snapshot does not touch the live world.
func TestRestoreIntoLeavesWorldOnFailure(t *testing.T) {
	w := playedWorld(t, 0)
	before := w.Clone()

	tcs := map[string]func(s *Snapshot){
		"unknown building":   func(s *Snapshot) { s.Cities[0].Buildings = []string{"castle"} },
		"duplicate building": func(s *Snapshot) { s.Cities[0].Buildings = []string{"mill", "mill"} },
		"bad terrain":        func(s *Snapshot) { s.Cities[1].Terrain = "swamp" },
		"bad grid":           func(s *Snapshot) { s.Grid[0] = "XX" },
		"size mismatch":      func(s *Snapshot) { s.Size = 4 },
		"negative food":      func(s *Snapshot) { s.Cities[0].Resources.Food = -1 },
		"unit off grid":      func(s *Snapshot) { s.Units[0].X = 99 },
		"orphan unit":        func(s *Snapshot) { s.Units[0].OwnerCity = "Atlantis" },
		"turn zero":          func(s *Snapshot) { s.Turn = 0 },
		"single city":        func(s *Snapshot) { s.Cities = s.Cities[:1]; s.Units = s.Units[:1] },
	}
	for name, mutate := range tcs {
		snap := Capture(w)
		mutate(&snap)
		if err := RestoreInto(w, snap); !errors.Is(err, ErrPersistence) {
			t.Fatalf("%s: expected ErrPersistence, got %v", name, err)
		}
		assertSameWorld(t, before, w)
	}
}

func TestRestoreIntoReplacesState(t *testing.T) {
	src := playedWorld(t, 3)
	dst := playedWorld(t, 0)
	if err := RestoreInto(dst, Capture(src)); err != nil {
		t.Fatalf("restore into: %v", err)
	}
	assertSameWorld(t, src, dst)
}

func TestDBSnapshotsAndReports(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "civsim.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, err := db.LatestSnapshot(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty db, got %v", err)
	}

	runID := NewRunID()
	w, err := engine.NewWorld(engine.DefaultWorldConfig(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	var reports []engine.TurnReport
	var lastID string
	for i := 0; i < 3; i++ {
		r, err := engine.RunTurn(ctx, w, engine.TurnOptions{})
		if err != nil {
			t.Fatalf("run turn: %v", err)
		}
		reports = append(reports, r)
		if lastID, err = db.SaveSnapshot(ctx, runID, Capture(w)); err != nil {
			t.Fatalf("save snapshot: %v", err)
		}
	}

	latest, err := db.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !reflect.DeepEqual(latest, Capture(w)) {
		t.Fatalf("latest snapshot differs:\n%+v\n%+v", latest, Capture(w))
	}
	byID, err := db.LoadSnapshot(ctx, lastID)
	if err != nil || byID.Turn != w.Turn {
		t.Fatalf("load by id: turn %d, err %v", byID.Turn, err)
	}
	if _, err := db.LoadSnapshot(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	infos, err := db.ListSnapshots(ctx, 10)
	if err != nil || len(infos) != 3 || infos[0].ID != lastID || infos[0].RunID != runID {
		t.Fatalf("unexpected snapshot list %+v, err %v", infos, err)
	}

	if err := db.SaveReports(ctx, runID, reports); err != nil {
		t.Fatalf("save reports: %v", err)
	}
	stored, err := db.Reports(ctx, runID)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	if len(stored) != len(reports) {
		t.Fatalf("expected %d reports, got %d", len(reports), len(stored))
	}
	for i := range reports {
		want, _ := reports[i].JSON()
		got, _ := stored[i].JSON()
		if !bytes.Equal(want, got) {
			t.Fatalf("report %d differs:\n%s\n%s", i, want, got)
		}
	}

	if err := db.SaveMeta(ctx, "run_id", runID); err != nil {
		t.Fatalf("save meta: %v", err)
	}
	if v, err := db.GetMeta(ctx, "run_id"); err != nil || v != runID {
		t.Fatalf("get meta: %q, %v", v, err)
	}
	if _, err := db.GetMeta(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
