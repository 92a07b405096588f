package session

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrSessionNotFound = errors.New("session not found")
var ErrSessionAlreadyExists = errors.New("session already exists")

// ErrUnexpectedResponse is returned when a message does not fit the current state.
var ErrUnexpectedResponse = errors.New("unexpected response")

// ErrInvalidKeyIndex is returned when the claimed key index is outside the secret table.
var ErrInvalidKeyIndex = errors.New("invalid key index")

// ErrChargingInCharging is returned when a robot announces recharging twice.
var ErrChargingInCharging = errors.New("recharging while already charging")

// ErrChargingFullInvalidState is returned on FULL POWER outside of charging.
var ErrChargingFullInvalidState = errors.New("full power while not charging")

// ErrMessageWhileCharging is returned when a charging robot sends anything but FULL POWER.
var ErrMessageWhileCharging = errors.New("message while charging")

// HashMismatchError is returned when the robot's confirmation does not match.
type HashMismatchError struct {
	Expected uint32
	Actual   int
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// IsChargingViolation reports whether err breaks the recharge protocol.
func IsChargingViolation(err error) bool {
	return errors.Is(err, ErrChargingInCharging) ||
		errors.Is(err, ErrChargingFullInvalidState) ||
		errors.Is(err, ErrMessageWhileCharging)
}
