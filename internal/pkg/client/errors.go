package client

import (
	"fmt"

	"robonav/internal/pkg/message"

	"github.com/pkg/errors"
)

// ErrNotConnected indicates that Run was called before Connect.
var ErrNotConnected = errors.New("not connected")

// ErrUnexpectedMessage indicates that the server sent a message the robot cannot act on.
var ErrUnexpectedMessage = errors.New("unexpected server message")

// ErrServerHashMismatch indicates that the server does not know the shared secret.
var ErrServerHashMismatch = errors.New("server hash mismatch")

// ErrNotAtOrigin indicates that the server asked for the secret away from the origin.
var ErrNotAtOrigin = errors.New("secret requested away from origin")

// ServerError is an error response from the server that ended the session.
type ServerError struct {
	Kind message.ServerKind
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server responded %s", e.Kind)
}
