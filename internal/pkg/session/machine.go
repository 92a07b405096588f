package session

import (
	"robonav/internal/pkg/checksum"
	"robonav/internal/pkg/message"
	"robonav/internal/pkg/nav"

	"github.com/pkg/errors"
)

// Timeout selects the transport deadline a transition asks for.
type Timeout int

// Timeout policies.
const (
	// TimeoutUnchanged keeps the current deadline policy.
	TimeoutUnchanged Timeout = iota
	// TimeoutNormal is used for every exchange outside of charging.
	TimeoutNormal
	// TimeoutRefilling is used while the robot is charging.
	TimeoutRefilling
)

func (t Timeout) String() string {
	switch t {
	case TimeoutNormal:
		return "normal"
	case TimeoutRefilling:
		return "refilling"
	default:
		return "unchanged"
	}
}

// Result is the outcome of a transition.
type Result struct {
	State   State
	Replies []message.Server
	Timeout Timeout
	// Done is set once the secret has been delivered. The connection is
	// closed after Replies have been sent.
	Done   bool
	Secret string
}

// Next applies msg to s. Any error ends the session.
func Next(s State, msg message.Client) (Result, error) {
	switch msg.(type) {
	case message.Recharging:
		if _, ok := s.(Charging); ok {
			return Result{}, ErrChargingInCharging
		}
		return Result{State: Charging{Previous: s}, Timeout: TimeoutRefilling}, nil
	case message.FullPower:
		c, ok := s.(Charging)
		if !ok {
			return Result{}, errors.Wrapf(ErrChargingFullInvalidState, "in %s", s.Name())
		}
		return Result{State: c.Previous, Timeout: TimeoutNormal}, nil
	}

	switch st := s.(type) {
	case Charging:
		return Result{}, errors.Wrapf(ErrMessageWhileCharging, "got %s", msg.Kind())

	case AwaitingUsername:
		m, ok := msg.(message.Username)
		if !ok {
			return Result{}, unexpected(s, msg)
		}
		return reply(AwaitingKeyIndex{Username: m.Name}, message.NewServer(message.KeyRequest)), nil

	case AwaitingKeyIndex:
		m, ok := msg.(message.KeyIndex)
		if !ok {
			return Result{}, unexpected(s, msg)
		}
		pair, ok := checksum.Lookup(m.Index)
		if !ok {
			return Result{}, errors.Wrapf(ErrInvalidKeyIndex, "%d not in [0, %d)", m.Index, checksum.Secrets())
		}
		server, client := checksum.LoginHash(st.Username, pair)
		return reply(AwaitingConfirmation{Expected: client}, message.NewConfirm(server)), nil

	case AwaitingConfirmation:
		m, ok := msg.(message.Confirmation)
		if !ok {
			return Result{}, unexpected(s, msg)
		}
		if int64(m.Hash) != int64(st.Expected) {
			return Result{}, &HashMismatchError{Expected: st.Expected, Actual: m.Hash}
		}
		// The first turn breaks any symmetry from the robot facing forward.
		return reply(Navigating{Nav: nav.Start()},
			message.NewServer(message.OK),
			message.NewServer(message.TurnLeft),
		), nil

	case Navigating:
		m, ok := msg.(message.Position)
		if !ok {
			return Result{}, unexpected(s, msg)
		}
		step, err := st.Nav.Next(nav.Position{X: m.X, Y: m.Y})
		if err != nil {
			return Result{}, errors.Wrap(err, "navigate failed")
		}
		if step.Arrived {
			return reply(Extracting{}, message.NewServer(message.GetMessage)), nil
		}
		return reply(Navigating{Nav: step.State}, Command(step.Action)), nil

	case Extracting:
		m, ok := msg.(message.Secret)
		if !ok {
			return Result{}, unexpected(s, msg)
		}
		r := reply(st, message.NewServer(message.Logout))
		r.Done = true
		r.Secret = m.Text
		return r, nil
	}
	return Result{}, errors.Errorf("unknown session state %T", s)
}

func reply(s State, msgs ...message.Server) Result {
	return Result{State: s, Replies: msgs}
}

func unexpected(s State, msg message.Client) error {
	return errors.Wrapf(ErrUnexpectedResponse, "%s in %s", msg.Kind(), s.Name())
}

// Command maps a navigation action to the message that orders it.
func Command(a nav.Action) message.Server {
	switch a {
	case nav.TurnLeft:
		return message.NewServer(message.TurnLeft)
	case nav.TurnRight:
		return message.NewServer(message.TurnRight)
	default:
		return message.NewServer(message.Move)
	}
}
