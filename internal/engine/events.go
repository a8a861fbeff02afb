// Random world events.
package engine

import (
	"github.com/talgya/civsim/internal/economy"
	"github.com/talgya/civsim/internal/entropy"
	"github.com/talgya/civsim/internal/social"
)

// EventTag identifies a world event.
type EventTag string

const (
	EventFamine    EventTag = "famine"
	EventInvasion  EventTag = "invasion"
	EventDiscovery EventTag = "discovery"
)

// Event odds and magnitudes.
const (
	EventChance       = 0.3
	FamineFoodLoss    = 100
	InvasionPopLoss   = 100
	DiscoveryGoldGain = 50
)

// eventTable is indexed by the second draw, so its order is fixed.
var eventTable = [3]EventTag{EventFamine, EventInvasion, EventDiscovery}

// RollEvent draws once to decide whether an event strikes the city and, if
// so, once more to pick which. The effect is applied before returning.
func RollEvent(c *social.City, rng entropy.Source) (EventTag, bool) {
	if rng.Float64() >= EventChance {
		return "", false
	}
	tag := eventTable[rng.Intn(len(eventTable))]
	ApplyEvent(c, tag)
	return tag, true
}

// ApplyEvent applies an event's effect, clamping losses at zero.
func ApplyEvent(c *social.City, tag EventTag) {
	switch tag {
	case EventFamine:
		c.Resources.Sub(economy.Pool{Food: FamineFoodLoss})
	case EventInvasion:
		c.Population = economy.ClampSub(c.Population, InvasionPopLoss)
	case EventDiscovery:
		c.Resources.Add(economy.Pool{Gold: DiscoveryGoldGain})
	}
}
