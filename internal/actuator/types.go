package actuator

import (
	"encoding/json"
	"fmt"
)

// DateLayout is the stored event timestamp format: ISO 8601, UTC, milliseconds.
const DateLayout = "2006-01-02T15:04:05.000Z"

// Kind identifies an actuator type. Each kind has its own event table.
type Kind string

// Supported actuator kinds.
const (
	Solenoid Kind = "solenoid"
	Aerator  Kind = "aerator"
)

// Kinds lists every supported kind in route registration order.
var Kinds = []Kind{Solenoid, Aerator}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	return k == Solenoid || k == Aerator
}

// table returns the event table name. Only valid kinds reach SQL.
func (k Kind) table() string {
	return string(k)
}

// IDColumn is the primary key column name, also the id field of listed events.
func (k Kind) IDColumn() string {
	return "id" + string(k)
}

// CreatedIDField is the id field name used when echoing a newly created event.
func (k Kind) CreatedIDField() string {
	if k == Solenoid {
		return "idSolenoid"
	}
	return k.IDColumn()
}

// Label is the human readable name used in device announcements.
func (k Kind) Label() string {
	switch k {
	case Solenoid:
		return "Solenoid"
	case Aerator:
		return "Aerator"
	default:
		return string(k)
	}
}

// Channel is the live feed channel events of this kind are broadcast on.
func (k Kind) Channel() string {
	return string(k) + ".event"
}

// Event is one stored actuator command.
type Event struct {
	Kind   Kind
	ID     int64
	PondID int64
	Date   string
	State  bool
}

// Pond returns the pond the event belongs to.
func (e Event) Pond() int64 { return e.PondID }

// MarshalJSON renders the event the way listing endpoints expose it:
// {"idsolenoid":1,"idkolam":2,"Date":"...","boolean":true}.
func (e Event) MarshalJSON() ([]byte, error) {
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	return json.Marshal(map[string]any{
		e.Kind.IDColumn(): e.ID,
		"idkolam":         e.PondID,
		"Date":            e.Date,
		"boolean":         e.State,
	})
}

// Announcement is the payload published to field devices.
type Announcement struct {
	Message string `json:"message"`
}

// announcementFor builds e.g. "Solenoid pada kolam 3 on".
func announcementFor(kind Kind, pondID int64, state bool) Announcement {
	word := "off"
	if state {
		word = "on"
	}
	return Announcement{Message: fmt.Sprintf("%s pada kolam %d %s", kind.Label(), pondID, word)}
}
