package handler

import (
	"robonav/internal/pkg/frame"
	"robonav/internal/pkg/message"
	"robonav/internal/pkg/nav"
	"robonav/internal/pkg/session"

	"github.com/pkg/errors"
)

// Fault classifies the error that ended a session.
type Fault int

// Session faults.
const (
	FaultTransport Fault = iota
	FaultConnectionClosed
	FaultTooLong
	FaultSyntax
	FaultLogic
	FaultKeyOutOfRange
	FaultLoginFailed
	FaultCharging
)

func (f Fault) String() string {
	switch f {
	case FaultTransport:
		return "transport"
	case FaultConnectionClosed:
		return "connection_closed"
	case FaultTooLong:
		return "too_long"
	case FaultSyntax:
		return "syntax"
	case FaultLogic:
		return "logic"
	case FaultKeyOutOfRange:
		return "key_out_of_range"
	case FaultLoginFailed:
		return "login_failed"
	case FaultCharging:
		return "charging"
	default:
		return "unknown"
	}
}

// Classify maps err to the fault it represents. Errors that are not part of
// the protocol taxonomy are treated as transport faults.
func Classify(err error) Fault {
	var mismatch *session.HashMismatchError
	switch {
	case errors.Is(err, frame.ErrConnectionClosed):
		return FaultConnectionClosed
	case errors.Is(err, frame.ErrMessageTooLong):
		return FaultTooLong
	case errors.Is(err, message.ErrParseNumber), errors.Is(err, message.ErrSplit):
		return FaultSyntax
	case errors.Is(err, session.ErrUnexpectedResponse), errors.Is(err, nav.ErrInvalidDelta):
		return FaultLogic
	case errors.Is(err, session.ErrInvalidKeyIndex):
		return FaultKeyOutOfRange
	case errors.As(err, &mismatch):
		return FaultLoginFailed
	case session.IsChargingViolation(err):
		return FaultCharging
	default:
		return FaultTransport
	}
}

// Response returns the message announcing err to the robot. Transport class
// faults have no response since the channel is presumed unusable.
// chargingViolation is the reply used for recharge protocol violations.
func Response(err error, chargingViolation message.ServerKind) (message.Server, bool) {
	switch Classify(err) {
	case FaultTooLong, FaultSyntax:
		return message.NewServer(message.SyntaxError), true
	case FaultLogic:
		return message.NewServer(message.LogicError), true
	case FaultKeyOutOfRange:
		return message.NewServer(message.KeyOutOfRange), true
	case FaultLoginFailed:
		return message.NewServer(message.LoginFailed), true
	case FaultCharging:
		return message.NewServer(chargingViolation), true
	default:
		return message.Server{}, false
	}
}
