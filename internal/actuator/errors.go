package actuator

import "errors"

var (
	// ErrUnknownKind is returned for an actuator kind other than solenoid or aerator.
	ErrUnknownKind = errors.New("unknown actuator kind")

	// ErrNoEvents is returned when a pond has no events of the requested kind.
	ErrNoEvents = errors.New("no actuator events for pond")
)
