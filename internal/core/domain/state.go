package domain

import "fmt"

// RunState is the orchestrator lifecycle state.
type RunState string

// Orchestrator states.
const (
	StateIdle       RunState = "idle"
	StateValidating RunState = "validating"
	StateRunning    RunState = "running"
	StateReporting  RunState = "reporting"
	StateFailed     RunState = "failed"
)

// transitions lists the allowed moves. Targets that cannot be resolved
// fail straight from IDLE; components that cannot be built fail from
// VALIDATING.
var transitions = map[RunState][]RunState{
	StateIdle:       {StateValidating, StateFailed},
	StateValidating: {StateRunning, StateFailed},
	StateRunning:    {StateReporting},
	StateReporting:  {StateIdle},
	// A configuration failure ends the invocation; the next one starts afresh.
	StateFailed: {StateValidating, StateFailed},
}

// CanTransition reports whether the orchestrator may move from s to next.
func (s RunState) CanTransition(next RunState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next, or an error if the move is not allowed.
func (s RunState) Transition(next RunState) (RunState, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: state %s cannot move to %s", ErrInvalidInput, s, next)
	}
	return next, nil
}

// Busy reports whether a run is executing in this state.
func (s RunState) Busy() bool {
	return s == StateValidating || s == StateRunning || s == StateReporting
}
