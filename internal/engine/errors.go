package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariant marks a broken world invariant. The run cannot continue.
	ErrInvariant = errors.New("invariant violation")

	// ErrFinished is returned when stepping an engine that has finished.
	ErrFinished = errors.New("engine finished")
)

// InvariantError names the violated invariant and what was observed.
type InvariantError struct {
	Turn      int
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("turn %d: %s violated: %s", e.Turn, e.Invariant, e.Detail)
}

// Unwrap lets errors.Is match ErrInvariant.
func (e *InvariantError) Unwrap() error {
	return ErrInvariant
}

// Invariant names.
const (
	InvariantResources = "non-negative city state"
	InvariantPosition  = "position within grid"
	InvariantTurn      = "positive turn counter"
	InvariantRoster    = "unit owner exists"
)
