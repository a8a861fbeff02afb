package agents

import "github.com/talgya/civsim/internal/world"

// UnitAction is what a unit does with its turn.
type UnitAction uint8

const (
	UnitNone UnitAction = iota
	UnitAdvance
	UnitDefend
)

func (a UnitAction) String() string {
	switch a {
	case UnitAdvance:
		return "advance"
	case UnitDefend:
		return "defend"
	default:
		return "none"
	}
}

// MarshalText encodes the action by name.
func (a UnitAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// HeuristicDecide advances when the enemy city is no farther than home
// (Manhattan distance), otherwise falls back to defend.
func HeuristicDecide(pos, ownCity, enemyCity world.Coord) UnitAction {
	if world.Manhattan(pos, enemyCity) <= world.Manhattan(pos, ownCity) {
		return UnitAdvance
	}
	return UnitDefend
}

// Apply moves the unit according to action. Advance steps toward the enemy
// city, Defend toward its own; None leaves it in place.
func (u *Unit) Apply(action UnitAction, ownCity, enemyCity world.Coord) {
	switch action {
	case UnitAdvance:
		u.StepToward(enemyCity)
	case UnitDefend:
		u.StepToward(ownCity)
	}
}
