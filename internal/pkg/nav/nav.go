// Package nav guides a blind robot to the origin of an unknown grid.
//
// The robot only reports its coordinates after each command, so the heading
// is inferred from the first successful move. Navigation then runs in three
// phases: routing diagonally until an axis is reached, aligning with the axis,
// and tracking along it to the origin. Single-cell obstacles are detected by
// an unchanged position and bypassed with short queues of pending actions that
// are issued before control returns to the phase that queued them.
package nav

import (
	"github.com/pkg/errors"
)

// ErrInvalidDelta is returned when a move displaced the robot by anything but one cell along one axis.
var ErrInvalidDelta = errors.New("invalid move delta")

// Action is a command issued to the robot.
type Action int

// Robot commands.
const (
	Move Action = iota
	TurnLeft
	TurnRight
)

func (a Action) String() string {
	switch a {
	case Move:
		return "move"
	case TurnLeft:
		return "turn-left"
	case TurnRight:
		return "turn-right"
	default:
		return "unknown"
	}
}

// Phase is the discovery stage a State is in.
type Phase int

// Navigation phases.
const (
	// Locating: no position known yet.
	Locating Phase = iota
	// Orienting: one move issued, heading unknown.
	Orienting
	// Routing: moving diagonally towards the nearest axis.
	Routing
	// Aligning: turning until the heading points along the axis towards the origin.
	Aligning
	// Tracking: moving along the axis towards the origin.
	Tracking
)

func (p Phase) String() string {
	switch p {
	case Locating:
		return "locating"
	case Orienting:
		return "orienting"
	case Routing:
		return "routing"
	case Aligning:
		return "aligning"
	case Tracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// State is a navigation state: a phase with its last known position and
// heading, and the actions still to be issued before the phase resumes.
type State struct {
	Phase    Phase
	Position Position
	Heading  Heading
	Pending  []Action
}

// Step is the outcome of feeding a position report to a State.
type Step struct {
	State  State
	Action Action
	// Arrived is set when the robot stands on the origin; State and Action are unset.
	Arrived bool
}

// Start returns the initial navigation state.
func Start() State {
	return State{Phase: Locating}
}

func leaf(phase Phase, p Position, h Heading) State {
	return State{Phase: phase, Position: p, Heading: h}
}

func (s State) then(actions ...Action) State {
	s.Pending = actions
	return s
}

func issue(s State, a Action) Step {
	return Step{State: s, Action: a}
}

var arrived = Step{Arrived: true}

// Next consumes the robot's position report p and returns the command to issue.
func (s State) Next(p Position) (Step, error) {
	if len(s.Pending) > 0 {
		next := s
		next.Pending = nil
		if len(s.Pending) > 1 {
			next.Pending = append([]Action(nil), s.Pending[1:]...)
		}
		return issue(next, s.Pending[0]), nil
	}

	switch s.Phase {
	case Locating:
		return issue(leaf(Orienting, p, 0), Move), nil

	case Orienting:
		if p == s.Position {
			// the first move was blocked, try again from another heading
			return issue(Start(), TurnRight), nil
		}
		h, ok := headingFromDelta(s.Position, p)
		if !ok {
			return Step{}, errors.Wrapf(ErrInvalidDelta, "%s -> %s", s.Position, p)
		}
		switch {
		case p == Origin:
			return arrived, nil
		case p.OnAxis():
			return issue(leaf(Aligning, p, h.Left()), TurnLeft), nil
		case h.ValidFor(p):
			return issue(leaf(Routing, p, h), Move), nil
		default:
			return issue(leaf(Routing, p, h.Reverse()).then(TurnLeft, Move), TurnLeft), nil
		}

	case Routing:
		switch {
		case p.OnAxis():
			return issue(leaf(Aligning, p, s.Heading.Left()), TurnLeft), nil
		case p == s.Position:
			if left := s.Heading.Left(); left.ValidFor(p) {
				return issue(leaf(Routing, p, left).then(Move), TurnLeft), nil
			}
			return issue(leaf(Routing, p, s.Heading.Right()).then(Move), TurnRight), nil
		default:
			return issue(leaf(Routing, p, s.Heading), Move), nil
		}

	case Aligning:
		switch {
		case p == Origin:
			return arrived, nil
		case s.Heading.ValidFor(p):
			return issue(leaf(Tracking, p, s.Heading), Move), nil
		default:
			return issue(leaf(Aligning, p, s.Heading.Left()), TurnLeft), nil
		}

	case Tracking:
		switch {
		case p == Origin:
			return arrived, nil
		case p == s.Position:
			// Sidestep one lane to the left, pass the obstacle and rejoin the
			// axis two cells ahead. The resumed state records the obstacle cell
			// so that the rejoined position reads as progress.
			detour := leaf(Tracking, s.Heading.Step(p), s.Heading).
				then(Move, TurnRight, Move, Move, TurnRight, Move, TurnLeft)
			return issue(detour, TurnLeft), nil
		default:
			return issue(leaf(Tracking, p, s.Heading), Move), nil
		}
	}
	return Step{}, errors.Errorf("unknown navigation phase %d", s.Phase)
}
