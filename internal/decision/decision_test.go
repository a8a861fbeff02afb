package decision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/talgya/civsim/internal/agents"
	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/social"
	"github.com/talgya/civsim/internal/world"
)

func TestParseResponseTokens(t *testing.T) {
	tcs := []struct {
		raw  string
		want Decision
	}{
		{`{"city":"edificio","unit":"avanza"}`, Decision{social.ActionBuilding, agents.UnitAdvance}},
		{`{"city":"produzione","unit":"difendi"}`, Decision{social.ActionProduction, agents.UnitDefend}},
		{`{"city":"popolazione","unit":null}`, Decision{social.ActionPopulation, agents.UnitNone}},
		{`{"city":null,"unit":null}`, Decision{}},
		{`{}`, Decision{}},
		{"Ecco la mia scelta:\n```json\n{\"city\": \"Edificio\", \"unit\": \"avanza\"}\n```", Decision{social.ActionBuilding, agents.UnitAdvance}},
	}
	for _, tc := range tcs {
		got, err := ParseResponse(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %+v, got %+v", tc.raw, tc.want, got)
		}
	}
}

// TestParseResponseFailuresWrapErrParse ensures malformed replies are reported as parse failures.
func TestParseResponseFailuresWrapErrParse(t *testing.T) {
	for _, raw := range []string{
		"",
		"no json here",
		`{"city": "attacca"}`,
		`{"unit": "fuggi"}`,
		`{"city": 3}`,
		`{broken`,
	} {
		if _, err := ParseResponse(raw); !errors.Is(err, ErrParse) {
			t.Fatalf("parse %q: expected ErrParse, got %v", raw, err)
		}
	}
}

func TestFormatResponseRoundTrip(t *testing.T) {
	for _, d := range []Decision{
		{social.ActionBuilding, agents.UnitAdvance},
		{social.ActionNone, agents.UnitDefend},
		{},
	} {
		got, err := ParseResponse(FormatResponse(d))
		if err != nil || got != d {
			t.Fatalf("round trip %+v: got %+v, err %v", d, got, err)
		}
	}
	if FormatResponse(Decision{}) != `{"city":null,"unit":null}` {
		t.Fatalf("unexpected empty encoding %s", FormatResponse(Decision{}))
	}
}

func TestFormatResponseEveryPair(t *testing.T) {
	cities := []social.CityAction{social.ActionNone, social.ActionProduction, social.ActionPopulation, social.ActionBuilding}
	units := []agents.UnitAction{agents.UnitNone, agents.UnitAdvance, agents.UnitDefend}
	for _, c := range cities {
		for _, u := range units {
			d := Decision{City: c, Unit: u}
			got, err := ParseResponse(FormatResponse(d))
			if err != nil || got != d {
				t.Fatalf("pair %s/%s: got %+v, err %v", c, u, got, err)
			}
		}
	}
}

func TestHeuristicDecide(t *testing.T) {
	unit := world.Coord{X: 4, Y: 4}
	snap := Snapshot{
		Turn:         3,
		CityPos:      world.Coord{X: 0, Y: 0},
		UnitPos:      &unit,
		EnemyCityPos: world.Coord{X: 8, Y: 8},
	}
	d, err := Heuristic{}.Decide(context.Background(), snap)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.City != social.ActionBuilding || d.Unit != agents.UnitAdvance {
		t.Fatalf("unexpected decision %+v", d)
	}

	snap.Turn = 1
	snap.Resources = economy.Pool{Gold: 300}
	snap.UnitPos = nil
	d, _ = Heuristic{}.Decide(context.Background(), snap)
	if d.City != social.ActionProduction || d.Unit != agents.UnitNone {
		t.Fatalf("unexpected decision %+v", d)
	}
}

type fakeCompleter struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, userPrompt string, maxTokens int) (string, error) {
	f.prompt = userPrompt
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.reply, f.err
}

func TestOracleDecide(t *testing.T) {
	fc := &fakeCompleter{reply: `{"city":"edificio","unit":"difendi"}`}
	o := NewOracle(fc)
	snap := Snapshot{Turn: 2, CityName: "Citta 1", Buildings: []string{"mill"}}
	d, err := o.Decide(context.Background(), snap)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if d.City != social.ActionBuilding || d.Unit != agents.UnitDefend {
		t.Fatalf("unexpected decision %+v", d)
	}
	if !strings.Contains(fc.prompt, "Citta 1") || !strings.Contains(fc.prompt, "mill") {
		t.Fatalf("prompt missing snapshot details: %s", fc.prompt)
	}
}

func TestOracleErrorsWrapErrParse(t *testing.T) {
	o := NewOracle(&fakeCompleter{err: errors.New("boom")})
	if _, err := o.Decide(context.Background(), Snapshot{}); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o = NewOracle(&fakeCompleter{reply: `{}`})
	if _, err := o.Decide(ctx, Snapshot{}); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse on cancel, got %v", err)
	}
}

func TestReplayServesInOrder(t *testing.T) {
	r := NewReplay(map[string][]string{
		"A": {`{"city":"edificio","unit":"avanza"}`, `not json`},
	})
	ctx := context.Background()
	d, err := r.Decide(ctx, Snapshot{CityName: "A"})
	if err != nil || d.City != social.ActionBuilding {
		t.Fatalf("first: got %+v, err %v", d, err)
	}
	if _, err := r.Decide(ctx, Snapshot{CityName: "A"}); !errors.Is(err, ErrParse) {
		t.Fatalf("second: expected ErrParse, got %v", err)
	}
	if _, err := r.Decide(ctx, Snapshot{CityName: "A"}); !errors.Is(err, ErrParse) {
		t.Fatalf("exhausted: expected ErrParse, got %v", err)
	}
	if _, err := r.Decide(ctx, Snapshot{CityName: "B"}); !errors.Is(err, ErrParse) {
		t.Fatalf("unknown city: expected ErrParse, got %v", err)
	}
}

func TestSnapshotTextWithoutUnit(t *testing.T) {
	s := Snapshot{CityName: "X"}
	if !strings.Contains(s.Text(), "Nessuna unità attiva") {
		t.Fatalf("unexpected text %s", s.Text())
	}
}
