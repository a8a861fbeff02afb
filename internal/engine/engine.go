// Package engine resolves turns of the two-city strategy game and drives the
// Idle → Running → Finished turn loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/civsim/internal/decision"
)

// Default run lengths for the two supported modes.
const (
	MaxTurnsScripted = 5
	MaxTurnsAI       = 10
)

// State is the engine lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Engine drives a World through its turns.
type Engine struct {
	World    *World
	Provider decision.Provider // Nil runs the scripted policy
	MaxTurns int
	Timeout  time.Duration // Per decision call

	// OnTurn is called after every resolved turn.
	OnTurn func(report TurnReport)

	state State
	err   error
}

// NewEngine creates an engine for w. A non-positive maxTurns selects the
// mode default: MaxTurnsScripted without a provider, MaxTurnsAI with one.
func NewEngine(w *World, p decision.Provider, maxTurns int) *Engine {
	if maxTurns <= 0 {
		maxTurns = MaxTurnsScripted
		if p != nil {
			maxTurns = MaxTurnsAI
		}
	}
	return &Engine{
		World:    w,
		Provider: p,
		MaxTurns: maxTurns,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Err returns the error that finished the engine, if any.
func (e *Engine) Err() error {
	return e.err
}

// Step resolves the next turn. The engine finishes once the turn counter
// passes MaxTurns, or immediately on an invariant violation.
func (e *Engine) Step(ctx context.Context) (TurnReport, error) {
	if e.state == StateFinished {
		return TurnReport{}, ErrFinished
	}
	if e.World.Turn > e.MaxTurns {
		e.state = StateFinished
		return TurnReport{}, ErrFinished
	}
	e.state = StateRunning

	report, err := RunTurn(ctx, e.World, TurnOptions{Provider: e.Provider, Timeout: e.Timeout})
	if err != nil {
		e.state = StateFinished
		e.err = err
		return TurnReport{}, fmt.Errorf("run turn %d: %w", e.World.Turn, err)
	}

	for _, cr := range report.Cities {
		slog.Info("turn resolved",
			"turn", report.Turn,
			"city", cr.Name,
			"source", cr.Source,
			"outcome", cr.Outcome,
			"event", cr.Event,
			"population", cr.Population,
			"production", cr.Production,
			"food", cr.Resources.Food,
			"gold", cr.Resources.Gold,
			"wood", cr.Resources.Wood,
		)
	}
	for _, col := range report.Collisions {
		slog.Info("unit eliminated", "turn", report.Turn, "unit", col.Unit, "x", col.Position.X, "y", col.Position.Y)
	}

	if e.OnTurn != nil {
		e.OnTurn(report)
	}
	if e.World.Turn > e.MaxTurns {
		e.state = StateFinished
	}
	return report, nil
}

// Run steps until the engine finishes or ctx is cancelled. It returns the
// reports of every turn it resolved.
func (e *Engine) Run(ctx context.Context) ([]TurnReport, error) {
	slog.Info("turn engine started", "turn", e.World.Turn, "max_turns", e.MaxTurns, "provider", e.Provider != nil)

	var reports []TurnReport
	for e.state != StateFinished {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("run cancelled: %w", err)
		}
		report, err := e.Step(ctx)
		if errors.Is(err, ErrFinished) {
			break
		}
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}

	slog.Info("turn engine finished", "turn", e.World.Turn)
	return reports, nil
}
