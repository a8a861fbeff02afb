// Package agents provides mobile units and their movement rules.
package agents

import "github.com/talgya/civsim/internal/world"

// DefaultKind is the tag of the starting unit.
const DefaultKind = "warrior"

// Unit is a mobile piece owned by a city. Units move one step per turn;
// Movement is carried for display only.
type Unit struct {
	Name      string      `json:"name"`
	Kind      string      `json:"kind"`
	Position  world.Coord `json:"position"`
	Movement  int         `json:"movement"`
	OwnerCity string      `json:"owner_city"` // City name, not an ownership link
}

// NewUnit creates a unit of the default kind for the named city.
func NewUnit(name, ownerCity string, pos world.Coord) *Unit {
	return &Unit{
		Name:      name,
		Kind:      DefaultKind,
		Position:  pos,
		Movement:  1,
		OwnerCity: ownerCity,
	}
}

// StepToward moves the unit one step toward the target cell.
func (u *Unit) StepToward(target world.Coord) {
	u.Position = world.StepToward(u.Position, target)
}

// Clone returns a copy of the unit.
func (u *Unit) Clone() *Unit {
	cp := *u
	return &cp
}
