// Package decision defines the boundary through which a city and its unit
// receive their orders each turn, and the providers that satisfy it.
package decision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/talgya/civsim/internal/agents"
	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/social"
	"github.com/talgya/civsim/internal/world"
)

// ErrParse marks a decision that was unavailable, timed out or could not be
// understood. Callers degrade to a no-op decision.
var ErrParse = errors.New("decision parse failure")

// Snapshot is the view of the world a provider decides from.
type Snapshot struct {
	Turn         int          `json:"turn"`
	CityName     string       `json:"cityName"`
	CityPos      world.Coord  `json:"cityPos"`
	Population   int          `json:"population"`
	Production   int          `json:"production"`
	Resources    economy.Pool `json:"resources"`
	Buildings    []string     `json:"buildings"`
	UnitPos      *world.Coord `json:"unitPos"` // nil once the unit is lost
	EnemyCityPos world.Coord  `json:"enemyCityPos"`
}

// Text renders the snapshot as a prompt-friendly description.
func (s Snapshot) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turno %d. Città: %s in (%d, %d).\n", s.Turn, s.CityName, s.CityPos.X, s.CityPos.Y)
	fmt.Fprintf(&b, "Popolazione: %d, Produzione: %d.\n", s.Population, s.Production)
	fmt.Fprintf(&b, "Risorse: cibo %d, oro %d, legno %d.\n", s.Resources.Food, s.Resources.Gold, s.Resources.Wood)
	if len(s.Buildings) > 0 {
		fmt.Fprintf(&b, "Edifici: %s.\n", strings.Join(s.Buildings, ", "))
	} else {
		b.WriteString("Edifici: nessuno.\n")
	}
	if s.UnitPos != nil {
		fmt.Fprintf(&b, "Unità in (%d, %d).\n", s.UnitPos.X, s.UnitPos.Y)
	} else {
		b.WriteString("Nessuna unità attiva.\n")
	}
	fmt.Fprintf(&b, "Città nemica in (%d, %d).\n", s.EnemyCityPos.X, s.EnemyCityPos.Y)
	return b.String()
}

// Decision is the pair of orders for one city and its unit.
type Decision struct {
	City social.CityAction
	Unit agents.UnitAction
}

// Provider returns the orders for a city given its snapshot. Implementations
// may block on I/O and must honour ctx cancellation.
type Provider interface {
	Decide(ctx context.Context, snap Snapshot) (Decision, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, snap Snapshot) (Decision, error)

// Decide calls f.
func (f ProviderFunc) Decide(ctx context.Context, snap Snapshot) (Decision, error) {
	return f(ctx, snap)
}

// Heuristic is the local provider: the scripted city policy plus the
// advance/defend distance rule for the unit.
type Heuristic struct{}

// Decide never fails.
func (Heuristic) Decide(_ context.Context, snap Snapshot) (Decision, error) {
	d := Decision{City: social.ScriptedAction(snap.Turn, snap.Resources)}
	if snap.UnitPos != nil {
		d.Unit = agents.HeuristicDecide(*snap.UnitPos, snap.CityPos, snap.EnemyCityPos)
	}
	return d, nil
}
