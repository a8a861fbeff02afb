package social

import (
	"fmt"

	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/entropy"
)

// CityAction is what a city does with its turn.
type CityAction uint8

const (
	ActionNone CityAction = iota
	ActionProduction
	ActionPopulation
	ActionBuilding
)

func (a CityAction) String() string {
	switch a {
	case ActionProduction:
		return "production"
	case ActionPopulation:
		return "population"
	case ActionBuilding:
		return "building"
	default:
		return "none"
	}
}

// Outcome tags recorded for a city action.
const (
	TagNone          = "none"
	TagProduction    = "production"
	TagPopulation    = "population"
	TagNoBuilding    = "none_available"
	TagInsufficient  = "insufficient"
	tagBuiltTemplate = "built:%s"
)

// ActionResult describes the effect of one applied city action.
type ActionResult struct {
	Action   CityAction           `json:"action"`
	Tag      string               `json:"tag"`
	Building economy.BuildingKind `json:"building,omitempty"`
}

// ScriptedAction is the fixed city policy, evaluated in order: build on
// every third turn, otherwise buy production with surplus gold, otherwise
// grow population with surplus food.
func ScriptedAction(turn int, res economy.Pool) CityAction {
	switch {
	case turn%ScriptedBuildPeriod == 0:
		return ActionBuilding
	case res.Gold > ProductionCostGold:
		return ActionProduction
	case res.Food > PopulationCostFood:
		return ActionPopulation
	}
	return ActionNone
}

// Act runs the scripted policy for the given turn and applies its choice.
func (c *City) Act(turn int, catalog economy.Catalog, rng entropy.Source) ActionResult {
	return c.Apply(ScriptedAction(turn, c.Resources), catalog, rng)
}

// Apply performs a city action. Trade actions the city cannot afford are
// reported as insufficient and change nothing.
func (c *City) Apply(action CityAction, catalog economy.Catalog, rng entropy.Source) ActionResult {
	res := ActionResult{Action: action, Tag: TagNone}

	switch action {
	case ActionProduction:
		if c.Resources.Gold < ProductionCostGold {
			res.Tag = TagInsufficient
			return res
		}
		c.Resources.Sub(economy.Pool{Gold: ProductionCostGold})
		c.Production += ProductionGain
		res.Tag = TagProduction

	case ActionPopulation:
		if c.Resources.Food < PopulationCostFood {
			res.Tag = TagInsufficient
			return res
		}
		c.Resources.Sub(economy.Pool{Food: PopulationCostFood})
		c.Population += PopulationGain
		res.Tag = TagPopulation

	case ActionBuilding:
		kind, ok := c.Construct(catalog, rng)
		if !ok {
			res.Tag = TagNoBuilding
			return res
		}
		res.Building = kind
		res.Tag = fmt.Sprintf(tagBuiltTemplate, kind)
	}

	return res
}

// MarshalText encodes the action by name.
func (a CityAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
