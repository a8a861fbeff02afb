package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talgya/civsim/internal/agents"
	"github.com/talgya/civsim/internal/social"
)

// Wire tokens, in Italian to match the prompts and recorded responses.
const (
	TokenProduction = "produzione"
	TokenPopulation = "popolazione"
	TokenBuilding   = "edificio"
	TokenAdvance    = "avanza"
	TokenDefend     = "difendi"
)

var cityTokens = map[string]social.CityAction{
	TokenProduction: social.ActionProduction,
	TokenPopulation: social.ActionPopulation,
	TokenBuilding:   social.ActionBuilding,
}

var unitTokens = map[string]agents.UnitAction{
	TokenAdvance: agents.UnitAdvance,
	TokenDefend:  agents.UnitDefend,
}

// wireDecision is the JSON shape exchanged with external providers. A null
// or missing field means no action.
type wireDecision struct {
	City *string `json:"city"`
	Unit *string `json:"unit"`
}

// ParseResponse extracts the first JSON object from a free-form response and
// maps its tokens. Every failure wraps ErrParse.
func ParseResponse(response string) (Decision, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return Decision{}, fmt.Errorf("%w: no JSON object found in response", ErrParse)
	}

	var w wireDecision
	if err := json.Unmarshal([]byte(response[start:end+1]), &w); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var d Decision
	if w.City != nil {
		a, ok := cityTokens[strings.ToLower(strings.TrimSpace(*w.City))]
		if !ok {
			return Decision{}, fmt.Errorf("%w: invalid city action %q", ErrParse, *w.City)
		}
		d.City = a
	}
	if w.Unit != nil {
		a, ok := unitTokens[strings.ToLower(strings.TrimSpace(*w.Unit))]
		if !ok {
			return Decision{}, fmt.Errorf("%w: invalid unit action %q", ErrParse, *w.Unit)
		}
		d.Unit = a
	}
	return d, nil
}

// FormatResponse encodes a decision in the wire shape.
func FormatResponse(d Decision) string {
	var w wireDecision
	for tok, a := range cityTokens {
		if a == d.City {
			t := tok
			w.City = &t
		}
	}
	for tok, a := range unitTokens {
		if a == d.Unit {
			t := tok
			w.Unit = &t
		}
	}
	b, err := json.Marshal(w)
	if err != nil {
		// Two nullable strings always marshal.
		panic(fmt.Sprintf("marshal wire decision: %v", err))
	}
	return string(b)
}
