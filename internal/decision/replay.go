package decision

import (
	"context"
	"fmt"
	"sync"
)

// Replay serves recorded raw responses per city in order. It lets a run be
// repeated exactly from a captured transcript. Once a city's responses run
// out, further calls fail with ErrParse.
type Replay struct {
	mu        sync.Mutex
	responses map[string][]string
}

// NewReplay creates a replay provider from per-city response queues.
func NewReplay(responses map[string][]string) *Replay {
	cp := make(map[string][]string, len(responses))
	for city, rs := range responses {
		cp[city] = append([]string(nil), rs...)
	}
	return &Replay{responses: cp}
}

// Decide pops the next response for the snapshot's city.
func (r *Replay) Decide(ctx context.Context, snap Snapshot) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	r.mu.Lock()
	queue := r.responses[snap.CityName]
	if len(queue) == 0 {
		r.mu.Unlock()
		return Decision{}, fmt.Errorf("%w: no recorded response for %s", ErrParse, snap.CityName)
	}
	resp := queue[0]
	r.responses[snap.CityName] = queue[1:]
	r.mu.Unlock()

	return ParseResponse(resp)
}
