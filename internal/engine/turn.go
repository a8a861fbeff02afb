// Turn resolution: economy, decisions, events, movement, collisions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talgya/civsim/internal/agents"
	"github.com/talgya/civsim/internal/decision"
	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/social"
	"github.com/talgya/civsim/internal/world"
)

// TurnOptions configures how decisions are obtained for a turn.
type TurnOptions struct {
	// Provider supplies city and unit orders. Nil runs the scripted policy.
	Provider decision.Provider

	// Timeout bounds each provider call. Zero means no per-call limit.
	Timeout time.Duration
}

type decided struct {
	d   decision.Decision
	err error
}

// RunTurn resolves one turn of w and advances its turn counter.
//
// Cities are processed in turn order. Every city accrues first; provider
// calls for all cities are then issued concurrently and joined before any
// result is applied. Each city then applies its action and rolls its event,
// in turn order. Accrual draws no randomness and city actions only touch
// their own city, so this matches resolving each city start to finish.
//
// A failed or malformed decision degrades to a no-op and is reported. An
// invariant violation aborts the turn with an *InvariantError.
func RunTurn(ctx context.Context, w *World, opts TurnOptions) (TurnReport, error) {
	if err := w.Validate(); err != nil {
		return TurnReport{}, err
	}

	turn := w.Turn
	report := TurnReport{Turn: turn, Units: make([]UnitReport, 0, len(w.Units))}
	cityReports := make([]CityReport, len(w.Cities))

	// 1. Economy.
	for i, c := range w.Cities {
		cityReports[i].Name = c.Name
		cityReports[i].OverflowPop = c.AccrueResources()
	}

	// 2. Decisions and city actions, then events.
	decisions := collectDecisions(ctx, w, opts)
	for i, c := range w.Cities {
		cr := &cityReports[i]

		var res social.ActionResult
		switch {
		case opts.Provider == nil:
			cr.Source = SourceScripted
			res = c.Act(turn, w.Catalog, w.Rng)
		case decisions[i].err != nil:
			cr.Source = SourceFallback
			report.Failures = append(report.Failures, DecisionFailure{City: c.Name, Error: decisions[i].err.Error()})
			slog.Warn("decision failed, using no-op", "turn", turn, "city", c.Name, "error", decisions[i].err)
			res = c.Apply(social.ActionNone, w.Catalog, w.Rng)
		default:
			cr.Source = SourceProvider
			res = c.Apply(decisions[i].d.City, w.Catalog, w.Rng)
		}
		cr.Action = res.Action.String()
		cr.Outcome = res.Tag

		if tag, ok := RollEvent(c, w.Rng); ok {
			cr.Event = string(tag)
		}
	}

	// 3. Unit movement, in roster order, each paired with its own city.
	for _, u := range w.Units {
		i := w.cityIndex(u.OwnerCity)
		own, enemy := w.Cities[i], w.Enemy(i)

		var action agents.UnitAction
		switch {
		case opts.Provider == nil:
			action = agents.HeuristicDecide(u.Position, own.Position, enemy.Position)
		case decisions[i].err == nil:
			action = decisions[i].d.Unit
		}

		from := u.Position
		u.Apply(action, own.Position, enemy.Position)
		report.Units = append(report.Units, UnitReport{
			Name:   u.Name,
			Owner:  u.OwnerCity,
			Action: action.String(),
			From:   from,
			To:     u.Position,
		})
	}

	// 4. Collisions.
	var removed []*agents.Unit
	w.Units, removed = ResolveCollisions(w.Units)
	report.Collisions = make([]CollisionReport, 0, len(removed))
	for _, u := range removed {
		report.Collisions = append(report.Collisions, CollisionReport{
			Tag:      TagCollision,
			Unit:     u.Name,
			Owner:    u.OwnerCity,
			Position: u.Position,
		})
	}

	if err := w.Validate(); err != nil {
		slog.Error("invariant violated", "turn", turn, "error", err)
		return TurnReport{}, err
	}

	for i, c := range w.Cities {
		cr := &cityReports[i]
		cr.Population = c.Population
		cr.Production = c.Production
		cr.Resources = c.Resources
		cr.Depopulated = c.Population == 0
		cr.Buildings = make([]string, 0, len(c.Buildings))
		for _, k := range c.BuildingKinds() {
			cr.Buildings = append(cr.Buildings, string(k))
		}
	}
	report.Cities = cityReports
	w.Turn++

	return report, nil
}

// ResolveCollisions removes every unit that shares its cell with another.
// Survivors and removed units both keep their roster order.
func ResolveCollisions(units []*agents.Unit) (active, removed []*agents.Unit) {
	occupancy := make(map[world.Coord]int, len(units))
	for _, u := range units {
		occupancy[u.Position]++
	}
	active = make([]*agents.Unit, 0, len(units))
	for _, u := range units {
		if occupancy[u.Position] >= 2 {
			removed = append(removed, u)
			continue
		}
		active = append(active, u)
	}
	return active, removed
}

// collectDecisions fans out one provider call per city and waits for all of
// them. Failures are kept per city, never returned to the group, so one slow
// or broken call cannot cancel the others. A call still running when its
// context ends is abandoned and its late result discarded.
func collectDecisions(ctx context.Context, w *World, opts TurnOptions) []decided {
	out := make([]decided, len(w.Cities))
	if opts.Provider == nil {
		return out
	}

	snaps := make([]decision.Snapshot, len(w.Cities))
	for i := range w.Cities {
		snaps[i] = w.Snapshot(i)
	}

	var g errgroup.Group
	for i := range snaps {
		g.Go(func() error {
			callCtx := ctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
			out[i] = awaitDecision(callCtx, opts.Provider, snaps[i])
			return nil
		})
	}
	g.Wait()
	return out
}

// awaitDecision runs one call and returns when it answers or ctx ends,
// whichever comes first. Every failure wraps ErrParse.
func awaitDecision(ctx context.Context, p decision.Provider, snap decision.Snapshot) decided {
	ch := make(chan decided, 1) // Buffered so an abandoned call can still send
	go func() {
		d, err := p.Decide(ctx, snap)
		ch <- decided{d: d, err: err}
	}()

	var res decided
	select {
	case res = <-ch:
		if res.err == nil {
			res.err = ctx.Err()
		}
	case <-ctx.Done():
		res = decided{err: ctx.Err()}
	}
	if res.err != nil {
		res.d = decision.Decision{}
		if !errors.Is(res.err, decision.ErrParse) {
			res.err = fmt.Errorf("%w: %v", decision.ErrParse, res.err)
		}
	}
	return res
}

// Snapshot builds the decision view for the city at index i.
func (w *World) Snapshot(i int) decision.Snapshot {
	c := w.Cities[i]
	snap := decision.Snapshot{
		Turn:         w.Turn,
		CityName:     c.Name,
		CityPos:      c.Position,
		Population:   c.Population,
		Production:   c.Production,
		Resources:    c.Resources,
		Buildings:    buildingNames(c.BuildingKinds()),
		EnemyCityPos: w.Enemy(i).Position,
	}
	if u, ok := w.UnitOf(c.Name); ok {
		pos := u.Position
		snap.UnitPos = &pos
	}
	return snap
}

func (w *World) cityIndex(name string) int {
	for i, c := range w.Cities {
		if c.Name == name {
			return i
		}
	}
	// Validate guarantees every unit has an owner.
	panic(fmt.Sprintf("unit owner %q not found", name))
}

func buildingNames(kinds []economy.BuildingKind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
