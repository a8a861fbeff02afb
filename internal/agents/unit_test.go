package agents

import (
	"testing"

	"github.com/talgya/civsim/internal/world"
)

// TestStepTowardMovesAtMostOnePerAxis ensures a unit never jumps more than one cell per axis.
func TestStepTowardMovesAtMostOnePerAxis(t *testing.T) {
	u := NewUnit("Guerriero 1", "Citta 1", world.Coord{X: 0, Y: 9})
	target := world.Coord{X: 7, Y: 2}
	for i := 0; i < 20; i++ {
		before := u.Position
		u.StepToward(target)
		dx, dy := u.Position.X-before.X, u.Position.Y-before.Y
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			t.Fatalf("step %d moved (%d, %d)", i, dx, dy)
		}
	}
	if u.Position != target {
		t.Fatalf("expected to reach %v, got %v", target, u.Position)
	}
	u.StepToward(target)
	if u.Position != target {
		t.Fatal("expected no-op at target")
	}
}

func TestHeuristicDecide(t *testing.T) {
	own := world.Coord{X: 0, Y: 0}
	enemy := world.Coord{X: 6, Y: 0}
	tcs := []struct {
		pos  world.Coord
		want UnitAction
	}{
		{world.Coord{X: 1, Y: 0}, UnitDefend},
		{world.Coord{X: 3, Y: 0}, UnitAdvance}, // tie
		{world.Coord{X: 5, Y: 0}, UnitAdvance},
	}
	for _, tc := range tcs {
		if got := HeuristicDecide(tc.pos, own, enemy); got != tc.want {
			t.Fatalf("pos %v: expected %v, got %v", tc.pos, tc.want, got)
		}
	}
}

func TestApplyDirections(t *testing.T) {
	own := world.Coord{X: 0, Y: 0}
	enemy := world.Coord{X: 4, Y: 4}

	u := NewUnit("u", "c", world.Coord{X: 2, Y: 2})
	u.Apply(UnitAdvance, own, enemy)
	if u.Position != (world.Coord{X: 3, Y: 3}) {
		t.Fatalf("advance: got %v", u.Position)
	}
	u.Apply(UnitDefend, own, enemy)
	if u.Position != (world.Coord{X: 2, Y: 2}) {
		t.Fatalf("defend: got %v", u.Position)
	}
	u.Apply(UnitNone, own, enemy)
	if u.Position != (world.Coord{X: 2, Y: 2}) {
		t.Fatalf("none: got %v", u.Position)
	}
}
