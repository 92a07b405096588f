package nav

import "fmt"

// Position is a cell on the grid.
type Position struct {
	X, Y int
}

// Origin is the target cell.
var Origin = Position{}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// OnAxis reports whether p lies on x = 0 or y = 0.
func (p Position) OnAxis() bool {
	return p.X == 0 || p.Y == 0
}

// Heading is the direction the robot faces.
type Heading int

// Headings in counter-clockwise order.
const (
	North Heading = iota
	West
	South
	East
)

func (h Heading) String() string {
	switch h {
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	case East:
		return "east"
	default:
		return "unknown"
	}
}

// Left turns 90 degrees counter-clockwise.
func (h Heading) Left() Heading {
	return (h + 1) % 4
}

// Right turns 90 degrees clockwise.
func (h Heading) Right() Heading {
	return h.Left().Left().Left()
}

// Reverse turns 180 degrees.
func (h Heading) Reverse() Heading {
	return h.Left().Left()
}

// ValidFor reports whether moving along h brings p closer to the origin.
func (h Heading) ValidFor(p Position) bool {
	return (p.X > 0 && h == West) ||
		(p.X < 0 && h == East) ||
		(p.Y > 0 && h == South) ||
		(p.Y < 0 && h == North)
}

// Step returns the cell one move ahead of p.
func (h Heading) Step(p Position) Position {
	switch h {
	case North:
		return Position{X: p.X, Y: p.Y + 1}
	case South:
		return Position{X: p.X, Y: p.Y - 1}
	case East:
		return Position{X: p.X + 1, Y: p.Y}
	default:
		return Position{X: p.X - 1, Y: p.Y}
	}
}

// headingFromDelta infers the heading that moved the robot from prev to next.
func headingFromDelta(prev, next Position) (Heading, bool) {
	switch (Position{X: next.X - prev.X, Y: next.Y - prev.Y}) {
	case Position{X: 0, Y: 1}:
		return North, true
	case Position{X: 0, Y: -1}:
		return South, true
	case Position{X: 1, Y: 0}:
		return East, true
	case Position{X: -1, Y: 0}:
		return West, true
	}
	return 0, false
}
