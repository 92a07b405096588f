package session

import (
	"robonav/internal/pkg/message"
	"robonav/internal/pkg/nav"
)

// State is the protocol phase of one connection. States are values: every
// transition returns a new State and never mutates the old one.
type State interface {
	// Expect is the kind of robot message this state is waiting for.
	Expect() message.Kind
	// MaxLen is the frame length budget while in this state.
	MaxLen() int
	// Name is a short label for logs and metrics.
	Name() string
}

// AwaitingUsername is the initial state.
type AwaitingUsername struct{}

// AwaitingKeyIndex holds the claimed username until the key index arrives.
type AwaitingKeyIndex struct {
	Username string
}

// AwaitingConfirmation holds the hash the robot must answer with.
type AwaitingConfirmation struct {
	Expected uint32
}

// Navigating guides an authenticated robot towards the origin.
type Navigating struct {
	Nav nav.State
}

// Extracting waits for the secret picked up at the origin.
type Extracting struct{}

// Charging suspends Previous while the robot recharges.
type Charging struct {
	Previous State
}

func (AwaitingUsername) Expect() message.Kind     { return message.KindUsername }
func (AwaitingKeyIndex) Expect() message.Kind     { return message.KindKeyIndex }
func (AwaitingConfirmation) Expect() message.Kind { return message.KindConfirmation }
func (Navigating) Expect() message.Kind           { return message.KindPosition }
func (Extracting) Expect() message.Kind           { return message.KindSecret }

// Expect accepts any body, so that whatever the robot sends before
// FULL POWER is rejected as a charging violation rather than a syntax error.
func (Charging) Expect() message.Kind { return message.KindCharging }

func (s AwaitingUsername) MaxLen() int     { return s.Expect().MaxLen() }
func (s AwaitingKeyIndex) MaxLen() int     { return s.Expect().MaxLen() }
func (s AwaitingConfirmation) MaxLen() int { return s.Expect().MaxLen() }
func (s Navigating) MaxLen() int           { return s.Expect().MaxLen() }
func (s Extracting) MaxLen() int           { return s.Expect().MaxLen() }
func (Charging) MaxLen() int               { return message.KindCharging.MaxLen() }

func (AwaitingUsername) Name() string     { return "awaiting-username" }
func (AwaitingKeyIndex) Name() string     { return "awaiting-key-index" }
func (AwaitingConfirmation) Name() string { return "awaiting-confirmation" }
func (s Navigating) Name() string         { return "navigating/" + s.Nav.Phase.String() }
func (Extracting) Name() string           { return "extracting" }
func (Charging) Name() string             { return "charging" }

// Initial returns the state of a freshly accepted connection.
func Initial() State {
	return AwaitingUsername{}
}
