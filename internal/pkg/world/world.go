// Package world simulates the grid a robot is navigated across.
package world

import (
	"math/rand"

	"robonav/internal/pkg/nav"
)

// World is a robot pose on a grid with blocked cells.
type World struct {
	position  nav.Position
	heading   nav.Heading
	obstacles map[nav.Position]bool

	Moves   int
	Turns   int
	Blocked int
}

// New places a robot at start facing heading. The origin is never blocked.
func New(start nav.Position, heading nav.Heading, obstacles ...nav.Position) *World {
	w := &World{
		position:  start,
		heading:   heading,
		obstacles: make(map[nav.Position]bool, len(obstacles)),
	}
	for _, o := range obstacles {
		if o == nav.Origin || o == start {
			continue
		}
		w.obstacles[o] = true
	}
	return w
}

// Random places a robot within radius of the origin with a random heading
// and scatters isolated obstacles off the origin.
func Random(r *rand.Rand, radius, obstacles int) *World {
	coord := func() int { return r.Intn(2*radius+1) - radius }
	start := nav.Position{X: coord(), Y: coord()}
	var blocked []nav.Position
	taken := map[nav.Position]bool{}
	for i := 0; i < obstacles*10 && len(blocked) < obstacles; i++ {
		o := nav.Position{X: coord(), Y: coord()}
		if o == nav.Origin || o == start || hasNeighbour(taken, o) {
			continue
		}
		taken[o] = true
		blocked = append(blocked, o)
	}
	return New(start, nav.Heading(r.Intn(4)), blocked...)
}

// hasNeighbour reports whether any of the eight cells around p, or p itself, is taken.
func hasNeighbour(taken map[nav.Position]bool, p nav.Position) bool {
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if taken[nav.Position{X: p.X + dx, Y: p.Y + dy}] {
				return true
			}
		}
	}
	return false
}

// Position returns the robot's cell.
func (w *World) Position() nav.Position {
	return w.position
}

// Heading returns the direction the robot faces.
func (w *World) Heading() nav.Heading {
	return w.heading
}

// Blocks reports whether p holds an obstacle.
func (w *World) Blocks(p nav.Position) bool {
	return w.obstacles[p]
}

// Apply executes a command. A move into an obstacle leaves the robot in place.
func (w *World) Apply(a nav.Action) {
	switch a {
	case nav.Move:
		w.Moves++
		next := w.heading.Step(w.position)
		if w.obstacles[next] {
			w.Blocked++
			return
		}
		w.position = next
	case nav.TurnLeft:
		w.Turns++
		w.heading = w.heading.Left()
	case nav.TurnRight:
		w.Turns++
		w.heading = w.heading.Right()
	}
}
