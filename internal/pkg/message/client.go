package message

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Interrupt keywords a robot may send in place of any expected message.
const (
	RechargingKeyword = "RECHARGING"
	FullPowerKeyword  = "FULL POWER"
)

// ErrParseNumber is returned when a numeric field is not a valid decimal integer.
var ErrParseNumber = errors.New("parse number failed")

// ErrSplit is returned when a position report is missing its coordinate separator.
var ErrSplit = errors.New("split position failed")

// Kind identifies the shape of a robot message.
type Kind int

// Robot message kinds.
const (
	KindUsername Kind = iota
	KindKeyIndex
	KindConfirmation
	KindPosition
	KindRecharging
	KindFullPower
	KindSecret
	// KindCharging is expected while the robot charges: anything but the
	// interrupt keywords parses as Stray.
	KindCharging
)

func (k Kind) String() string {
	switch k {
	case KindUsername:
		return "USERNAME"
	case KindKeyIndex:
		return "KEY_INDEX"
	case KindConfirmation:
		return "CONFIRMATION"
	case KindPosition:
		return "POSITION"
	case KindRecharging:
		return "RECHARGING"
	case KindFullPower:
		return "FULL_POWER"
	case KindSecret:
		return "SECRET"
	case KindCharging:
		return "STRAY"
	default:
		return "UNKNOWN"
	}
}

// MaxLen is the frame length budget for a message of this kind:
// the longest accepted body plus the two terminator bytes.
func (k Kind) MaxLen() int {
	switch k {
	case KindUsername:
		return 20
	case KindKeyIndex:
		return 5
	case KindConfirmation:
		return 7
	case KindSecret:
		return 100
	default:
		return 12
	}
}

// Client is a parsed robot message.
type Client interface {
	Kind() Kind
}

// Username claims an identity.
type Username struct{ Name string }

// KeyIndex selects a secret pair.
type KeyIndex struct{ Index int }

// Confirmation carries the robot's half of the login hash.
type Confirmation struct{ Hash int }

// Position reports the robot's coordinates after a command.
type Position struct{ X, Y int }

// Recharging announces that the robot is going offline to charge.
type Recharging struct{}

// FullPower announces that charging has finished.
type FullPower struct{}

// Secret is the payload picked up at the origin.
type Secret struct{ Text string }

// Stray is any message received while the robot is charging.
type Stray struct{ Body string }

func (Username) Kind() Kind     { return KindUsername }
func (KeyIndex) Kind() Kind     { return KindKeyIndex }
func (Confirmation) Kind() Kind { return KindConfirmation }
func (Position) Kind() Kind     { return KindPosition }
func (Recharging) Kind() Kind   { return KindRecharging }
func (FullPower) Kind() Kind    { return KindFullPower }
func (Secret) Kind() Kind       { return KindSecret }
func (Stray) Kind() Kind        { return KindCharging }

// Parse interprets body as a message of the expected kind.
// The interrupt keywords are recognised regardless of what is expected.
func Parse(body string, expect Kind) (Client, error) {
	switch body {
	case RechargingKeyword:
		return Recharging{}, nil
	case FullPowerKeyword:
		return FullPower{}, nil
	}
	switch expect {
	case KindUsername:
		return Username{Name: body}, nil
	case KindKeyIndex:
		n, err := parseNumber(body)
		if err != nil {
			return nil, err
		}
		return KeyIndex{Index: n}, nil
	case KindConfirmation:
		n, err := parseNumber(body)
		if err != nil {
			return nil, err
		}
		return Confirmation{Hash: n}, nil
	case KindPosition:
		return parsePosition(body)
	case KindSecret:
		return Secret{Text: body}, nil
	case KindCharging:
		return Stray{Body: body}, nil
	default:
		return nil, errors.Wrapf(ErrParseNumber, "no parser for %s body %q", expect, body)
	}
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(ErrParseNumber, "%q: %v", s, err)
	}
	return n, nil
}

func parsePosition(body string) (Position, error) {
	rest, ok := strings.CutPrefix(body, "OK ")
	if !ok {
		return Position{}, errors.Wrapf(ErrParseNumber, "position %q lacks OK prefix", body)
	}
	xs, ys, ok := strings.Cut(rest, " ")
	if !ok {
		return Position{}, errors.Wrapf(ErrSplit, "position %q", body)
	}
	x, err := parseNumber(xs)
	if err != nil {
		return Position{}, errors.Wrap(err, "parse x failed")
	}
	y, err := parseNumber(ys)
	if err != nil {
		return Position{}, errors.Wrap(err, "parse y failed")
	}
	return Position{X: x, Y: y}, nil
}

// Encode renders a robot message as a framed payload.
func Encode(msg Client) []byte {
	var body string
	switch m := msg.(type) {
	case Username:
		body = m.Name
	case KeyIndex:
		body = strconv.Itoa(m.Index)
	case Confirmation:
		body = strconv.Itoa(m.Hash)
	case Position:
		body = "OK " + strconv.Itoa(m.X) + " " + strconv.Itoa(m.Y)
	case Recharging:
		body = RechargingKeyword
	case FullPower:
		body = FullPowerKeyword
	case Secret:
		body = m.Text
	case Stray:
		body = m.Body
	}
	return append([]byte(body), Terminator...)
}
