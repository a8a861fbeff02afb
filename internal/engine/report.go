package engine

import (
	"encoding/json"

	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/world"
)

// TagCollision marks a unit removed by a same-cell collision.
const TagCollision = "collision"

// Decision sources recorded in a city report.
const (
	SourceScripted = "scripted"
	SourceProvider = "provider"
	SourceFallback = "fallback" // Provider failed, no-op used
)

// TurnReport is the record of one resolved turn. It holds copies only and is
// never mutated after RunTurn returns it.
type TurnReport struct {
	Turn       int               `json:"turn"`
	Cities     []CityReport      `json:"cities"`
	Units      []UnitReport      `json:"units"`
	Collisions []CollisionReport `json:"collisions"`
	Failures   []DecisionFailure `json:"decision_failures,omitempty"`
}

// CityReport captures one city's actions and its state at the end of the turn.
type CityReport struct {
	Name        string       `json:"name"`
	Source      string       `json:"source"`
	Action      string       `json:"action"`
	Outcome     string       `json:"outcome"`
	Event       string       `json:"event,omitempty"`
	OverflowPop int          `json:"overflow_population,omitempty"`
	Population  int          `json:"population"`
	Production  int          `json:"production"`
	Resources   economy.Pool `json:"resources"`
	Buildings   []string     `json:"buildings"`
	Depopulated bool         `json:"depopulated,omitempty"`
}

// UnitReport captures one unit's move.
type UnitReport struct {
	Name   string      `json:"name"`
	Owner  string      `json:"owner"`
	Action string      `json:"action"`
	From   world.Coord `json:"from"`
	To     world.Coord `json:"to"`
}

// CollisionReport records a unit eliminated on a shared cell.
type CollisionReport struct {
	Tag      string      `json:"tag"`
	Unit     string      `json:"unit"`
	Owner    string      `json:"owner"`
	Position world.Coord `json:"position"`
}

// DecisionFailure records a provider call that degraded to a no-op.
type DecisionFailure struct {
	City  string `json:"city"`
	Error string `json:"error"`
}

// JSON encodes the report. Equal reports encode to identical bytes.
func (r TurnReport) JSON() ([]byte, error) {
	return json.Marshal(r)
}
