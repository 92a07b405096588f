package nav

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var headings = []Heading{North, West, South, East}

func TestHeadingAlgebra(t *testing.T) {
	for _, h := range headings {
		assert.Equal(t, h, h.Left().Left().Left().Left(), h.String())
		assert.Equal(t, h.Left().Left().Left(), h.Right(), h.String())
		assert.Equal(t, h, h.Left().Right(), h.String())
		assert.Equal(t, h, h.Right().Left(), h.String())
		assert.Equal(t, h.Left().Left(), h.Reverse(), h.String())
	}
	assert.Equal(t, West, North.Left())
	assert.Equal(t, South, West.Left())
	assert.Equal(t, East, South.Left())
	assert.Equal(t, North, East.Left())
}

func TestHeadingStep(t *testing.T) {
	p := Position{X: 3, Y: -2}
	assert.Equal(t, Position{X: 3, Y: -1}, North.Step(p))
	assert.Equal(t, Position{X: 3, Y: -3}, South.Step(p))
	assert.Equal(t, Position{X: 4, Y: -2}, East.Step(p))
	assert.Equal(t, Position{X: 2, Y: -2}, West.Step(p))
}

func TestHeadingValidFor(t *testing.T) {
	tests := []struct {
		p     Position
		valid []Heading
	}{
		{Position{X: 2, Y: 3}, []Heading{West, South}},
		{Position{X: -2, Y: 3}, []Heading{East, South}},
		{Position{X: -2, Y: -3}, []Heading{East, North}},
		{Position{X: 2, Y: -3}, []Heading{West, North}},
		{Position{X: 0, Y: 5}, []Heading{South}},
		{Position{X: -5, Y: 0}, []Heading{East}},
		{Origin, nil},
	}
	for _, tt := range tests {
		for _, h := range headings {
			assert.Equal(t, contains(tt.valid, h), h.ValidFor(tt.p), "%s at %s", h, tt.p)
		}
	}
}

func contains(hs []Heading, h Heading) bool {
	for _, x := range hs {
		if x == h {
			return true
		}
	}
	return false
}

func mustNext(t *testing.T, s State, p Position) Step {
	t.Helper()
	step, err := s.Next(p)
	require.NoError(t, err)
	return step
}

func TestLocatingIssuesMove(t *testing.T) {
	step := mustNext(t, Start(), Position{X: 2, Y: 0})
	assert.Equal(t, Move, step.Action)
	assert.Equal(t, Orienting, step.State.Phase)
	assert.Equal(t, Position{X: 2, Y: 0}, step.State.Position)
}

func TestOrientingBlockedReturnsToLocating(t *testing.T) {
	s := mustNext(t, Start(), Position{X: 2, Y: 0}).State
	step := mustNext(t, s, Position{X: 2, Y: 0})
	assert.Equal(t, TurnRight, step.Action)
	assert.Equal(t, Start(), step.State)
}

func TestOrientingArrivesAtOrigin(t *testing.T) {
	s := leaf(Orienting, Position{X: 1, Y: 0}, 0)
	step := mustNext(t, s, Origin)
	assert.True(t, step.Arrived)
}

func TestOrientingOnAxisAligns(t *testing.T) {
	s := leaf(Orienting, Position{X: 3, Y: 1}, 0)
	step := mustNext(t, s, Position{X: 3, Y: 0})
	assert.Equal(t, TurnLeft, step.Action)
	assert.Equal(t, leaf(Aligning, Position{X: 3, Y: 0}, South.Left()), step.State)
}

func TestOrientingValidHeadingRoutes(t *testing.T) {
	s := leaf(Orienting, Position{X: 4, Y: 3}, 0)
	step := mustNext(t, s, Position{X: 3, Y: 3})
	assert.Equal(t, Move, step.Action)
	assert.Equal(t, leaf(Routing, Position{X: 3, Y: 3}, West), step.State)
}

func TestOrientingInvalidHeadingTurnsAround(t *testing.T) {
	s := leaf(Orienting, Position{X: 2, Y: 3}, 0)
	p := Position{X: 3, Y: 3} // moved east, away from the origin

	step := mustNext(t, s, p)
	assert.Equal(t, TurnLeft, step.Action)
	assert.Equal(t, []Action{TurnLeft, Move}, step.State.Pending)

	step = mustNext(t, step.State, p)
	assert.Equal(t, TurnLeft, step.Action)
	step = mustNext(t, step.State, p)
	assert.Equal(t, Move, step.Action)
	assert.Equal(t, leaf(Routing, p, West), step.State)
}

func TestOrientingInvalidDelta(t *testing.T) {
	s := leaf(Orienting, Position{X: 2, Y: 3}, 0)
	_, err := s.Next(Position{X: 4, Y: 3})
	require.True(t, errors.Is(err, ErrInvalidDelta))
	_, err = s.Next(Position{X: 3, Y: 4})
	require.True(t, errors.Is(err, ErrInvalidDelta))
}

func TestRoutingObstacleTurnsTowardsOtherValidHeading(t *testing.T) {
	p := Position{X: 3, Y: 3}

	// facing west, left is south which is valid
	step := mustNext(t, leaf(Routing, p, West), p)
	assert.Equal(t, TurnLeft, step.Action)
	assert.Equal(t, leaf(Routing, p, South).then(Move), step.State)

	// facing south, left is east which is not valid, so turn right to west
	step = mustNext(t, leaf(Routing, p, South), p)
	assert.Equal(t, TurnRight, step.Action)
	assert.Equal(t, leaf(Routing, p, West).then(Move), step.State)

	step = mustNext(t, step.State, p)
	assert.Equal(t, Move, step.Action)
	assert.Equal(t, leaf(Routing, p, West), step.State)
}

func TestRoutingReachesAxis(t *testing.T) {
	step := mustNext(t, leaf(Routing, Position{X: 1, Y: 3}, West), Position{X: 0, Y: 3})
	assert.Equal(t, TurnLeft, step.Action)
	assert.Equal(t, leaf(Aligning, Position{X: 0, Y: 3}, South), step.State)
}

func TestAligningRotatesUntilValid(t *testing.T) {
	p := Position{X: 0, Y: 3}
	s := leaf(Aligning, p, West)
	var turns int
	for {
		step := mustNext(t, s, p)
		if step.Action == Move {
			assert.Equal(t, leaf(Tracking, p, South), step.State)
			break
		}
		assert.Equal(t, TurnLeft, step.Action)
		turns++
		require.LessOrEqual(t, turns, 3)
		s = step.State
	}
	assert.Equal(t, 1, turns)
}

func TestTrackingDetour(t *testing.T) {
	p := Position{X: 0, Y: 5}
	step := mustNext(t, leaf(Tracking, p, South), p)
	assert.Equal(t, TurnLeft, step.Action)

	var actions []Action
	s := step.State
	for len(s.Pending) > 0 {
		step = mustNext(t, s, p)
		actions = append(actions, step.Action)
		s = step.State
	}
	assert.Equal(t, []Action{Move, TurnRight, Move, Move, TurnRight, Move, TurnLeft}, actions)
	assert.Equal(t, leaf(Tracking, Position{X: 0, Y: 4}, South), s)

	step = mustNext(t, s, Position{X: 0, Y: 3})
	assert.Equal(t, Move, step.Action)
	assert.Equal(t, leaf(Tracking, Position{X: 0, Y: 3}, South), step.State)
}

func TestTrackingArrives(t *testing.T) {
	step := mustNext(t, leaf(Tracking, Position{X: 0, Y: 1}, South), Origin)
	assert.True(t, step.Arrived)
}

func TestPendingDoesNotAlias(t *testing.T) {
	s := leaf(Routing, Position{X: 1, Y: 1}, West).then(TurnLeft, Move)
	first := mustNext(t, s, Position{X: 1, Y: 1})
	second := mustNext(t, s, Position{X: 1, Y: 1})
	assert.Equal(t, first, second)
	assert.Equal(t, []Action{TurnLeft, Move}, s.Pending)
}
