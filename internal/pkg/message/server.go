// Package message implements the robot protocol vocabulary.
//
// Every message in either direction is a text body followed by the two byte
// terminator {0x07, 0x08}. Server messages are a closed catalogue rendered as
// "<code> <text>", except CONFIRM which carries only the decimal server hash.
// Robot messages are parsed according to the kind the session currently expects.
package message

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Terminator ends every frame on the wire.
var Terminator = []byte{0x07, 0x08}

// ErrUnknownServerMessage is returned when a body is not in the server catalogue.
var ErrUnknownServerMessage = errors.New("unknown server message")

// ServerKind identifies an outbound message.
type ServerKind int

// Server message catalogue.
const (
	KeyRequest ServerKind = iota
	Confirm
	OK
	LoginFailed
	SyntaxError
	LogicError
	KeyOutOfRange
	Move
	TurnLeft
	TurnRight
	GetMessage
	Logout
)

type serverEntry struct {
	code int
	text string
	name string
}

var catalogue = map[ServerKind]serverEntry{
	Move:          {102, "MOVE", "MOVE"},
	TurnLeft:      {103, "TURN LEFT", "TURN_LEFT"},
	TurnRight:     {104, "TURN RIGHT", "TURN_RIGHT"},
	GetMessage:    {105, "GET MESSAGE", "GET_MESSAGE"},
	Logout:        {106, "LOGOUT", "LOGOUT"},
	KeyRequest:    {107, "KEY REQUEST", "KEY_REQUEST"},
	OK:            {200, "OK", "OK"},
	LoginFailed:   {300, "LOGIN FAILED", "LOGIN_FAILED"},
	SyntaxError:   {301, "SYNTAX ERROR", "SYNTAX_ERROR"},
	LogicError:    {302, "LOGIC ERROR", "LOGIC_ERROR"},
	KeyOutOfRange: {303, "KEY OUT OF RANGE", "KEY_OUT_OF_RANGE"},
}

func (k ServerKind) String() string {
	if k == Confirm {
		return "CONFIRM"
	}
	if e, ok := catalogue[k]; ok {
		return e.name
	}
	return "UNKNOWN"
}

// Code returns the numeric code of the message, or 0 for CONFIRM.
func (k ServerKind) Code() int {
	return catalogue[k].code
}

// Server is an outbound message. Hash is only meaningful for Confirm.
type Server struct {
	Kind ServerKind
	Hash uint32
}

// NewServer returns a static catalogue message.
func NewServer(kind ServerKind) Server {
	return Server{Kind: kind}
}

// NewConfirm returns the CONFIRM message carrying the server hash.
func NewConfirm(hash uint32) Server {
	return Server{Kind: Confirm, Hash: hash}
}

// Body renders the message text without the terminator.
func (m Server) Body() string {
	if m.Kind == Confirm {
		return strconv.FormatUint(uint64(m.Hash), 10)
	}
	e := catalogue[m.Kind]
	return strconv.Itoa(e.code) + " " + e.text
}

// Encode renders the message as a framed payload.
func (m Server) Encode() []byte {
	return append([]byte(m.Body()), Terminator...)
}

// ParseServer interprets a frame body received from the server.
func ParseServer(body string) (Server, error) {
	code, _, ok := strings.Cut(body, " ")
	if !ok {
		hash, err := strconv.ParseUint(body, 10, 32)
		if err != nil {
			return Server{}, errors.Wrapf(ErrUnknownServerMessage, "%q", body)
		}
		return NewConfirm(uint32(hash)), nil
	}
	for kind, e := range catalogue {
		if strconv.Itoa(e.code) == code && body == strconv.Itoa(e.code)+" "+e.text {
			return NewServer(kind), nil
		}
	}
	return Server{}, errors.Wrapf(ErrUnknownServerMessage, "%q", body)
}
