package world

import (
	"math/rand"
	"testing"

	"github.com/talgya/civsim/internal/entropy"
)

// TestGenerateConsumesRowMajorDraws ensures generation reads one draw per cell in row order.
func TestGenerateConsumesRowMajorDraws(t *testing.T) {
	counter := &entropy.Counter{Src: rand.New(rand.NewSource(7))}
	g := Generate(4, counter)
	if counter.Draws != 16 {
		t.Fatalf("expected 16 draws, got %d", counter.Draws)
	}

	ref := rand.New(rand.NewSource(7))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := TerrainKinds[ref.Intn(4)]
			got, ok := g.Terrain(Coord{X: x, Y: y})
			if !ok || got != want {
				t.Fatalf("cell (%d, %d): expected %v, got %v", x, y, want, got)
			}
		}
	}
}

// TestGenerateIsDeterministic ensures equal seeds produce equal grids.
func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(DefaultSize, rand.New(rand.NewSource(42)))
	b := Generate(DefaultSize, rand.New(rand.NewSource(42)))
	if !a.Equal(b) {
		t.Fatal("expected identical grids for the same seed")
	}
}

func TestGenerateNoiseFillsGrid(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Mode = GenNoise
	cfg.Seed = 3
	g := GenerateFromConfig(cfg, nil)
	total := 0
	for _, c := range TerrainCounts(g) {
		total += c
	}
	if total != cfg.Size*cfg.Size {
		t.Fatalf("expected %d cells, got %d", cfg.Size*cfg.Size, total)
	}
	if !g.Equal(GenerateNoise(cfg)) {
		t.Fatal("expected noise generation to be deterministic for a seed")
	}
}

func TestInBounds(t *testing.T) {
	g := Generate(3, rand.New(rand.NewSource(1)))
	tcs := []struct {
		c    Coord
		want bool
	}{
		{Coord{0, 0}, true},
		{Coord{2, 2}, true},
		{Coord{3, 0}, false},
		{Coord{0, -1}, false},
	}
	for _, tc := range tcs {
		if got := g.InBounds(tc.c); got != tc.want {
			t.Fatalf("InBounds(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
	if _, ok := g.Terrain(Coord{5, 5}); ok {
		t.Fatal("expected off-grid lookup to fail")
	}
}

func TestRowsRoundTrip(t *testing.T) {
	g := Generate(5, rand.New(rand.NewSource(9)))
	back, err := ParseRows(g.Rows())
	if err != nil {
		t.Fatalf("parse rows: %v", err)
	}
	if !g.Equal(back) {
		t.Fatal("expected parsed grid to equal original")
	}
}

func TestParseRowsRejectsBadInput(t *testing.T) {
	if _, err := ParseRows([]string{"PX", "PP"}); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
	if _, err := ParseRows([]string{"PPP", "PP"}); err == nil {
		t.Fatal("expected error for ragged rows")
	}
}

// TestStepToward ensures each axis moves by exactly sign(target-current).
func TestStepToward(t *testing.T) {
	tcs := []struct {
		from, to, want Coord
	}{
		{Coord{0, 0}, Coord{5, 5}, Coord{1, 1}},
		{Coord{5, 5}, Coord{0, 5}, Coord{4, 5}},
		{Coord{3, 3}, Coord{3, 0}, Coord{3, 2}},
		{Coord{4, 4}, Coord{4, 4}, Coord{4, 4}},
		{Coord{2, 7}, Coord{9, 1}, Coord{3, 6}},
	}
	for _, tc := range tcs {
		if got := StepToward(tc.from, tc.to); got != tc.want {
			t.Fatalf("StepToward(%v, %v) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestManhattan(t *testing.T) {
	if d := Manhattan(Coord{1, 2}, Coord{4, 0}); d != 5 {
		t.Fatalf("expected 5, got %d", d)
	}
}

func TestPlaceCitiesDistinct(t *testing.T) {
	g := Generate(2, rand.New(rand.NewSource(1)))
	coords := PlaceCities(g, 4, rand.New(rand.NewSource(5)))
	if len(coords) != 4 {
		t.Fatalf("expected 4 coords, got %d", len(coords))
	}
	seen := make(map[Coord]bool)
	for _, c := range coords {
		if seen[c] {
			t.Fatalf("duplicate coord %v", c)
		}
		if !g.InBounds(c) {
			t.Fatalf("coord %v out of bounds", c)
		}
		seen[c] = true
	}
}

func TestAdjacentCellPrefersEast(t *testing.T) {
	g := Generate(3, rand.New(rand.NewSource(1)))
	if c := AdjacentCell(g, Coord{0, 0}); c != (Coord{1, 0}) {
		t.Fatalf("expected (1,0), got %v", c)
	}
	if c := AdjacentCell(g, Coord{2, 1}); c != (Coord{1, 1}) {
		t.Fatalf("expected (1,1), got %v", c)
	}
}

func TestTerrainText(t *testing.T) {
	for _, k := range TerrainKinds {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", k, err)
		}
		var back TerrainKind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Fatalf("round trip %v: got %v, err %v", k, back, err)
		}
	}
	if TerrainHill.Symbol() != "C" {
		t.Fatalf("expected hill symbol C, got %s", TerrainHill.Symbol())
	}
}
