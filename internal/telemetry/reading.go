package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the stored timestamp format: ISO 8601, UTC, milliseconds.
// Lexical order matches chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Reading is one persisted sensor measurement for a pond.
type Reading struct {
	ID         int64     `json:"idsensor"`
	PondID     int64     `json:"idkolam"`
	SensorType string    `json:"jenis_sensor"`
	Value      float64   `json:"value"`
	Timestamp  string    `json:"timestamp"`
	RecordedAt time.Time `json:"-"`
}

// Pond returns the pond the reading was taken in.
func (r Reading) Pond() int64 { return r.PondID }

var (
	// ErrMalformedPayload is returned when the payload is not a JSON object.
	ErrMalformedPayload = errors.New("malformed telemetry payload")

	// ErrMissingField is returned when a required field is absent or null.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField is returned when a field has an unusable type or value.
	ErrInvalidField = errors.New("invalid field")
)

// Decode parses a telemetry payload and stamps it with now.
//
// Accepted shapes:
//   - idkolam: JSON integer or integer string
//   - jenis_sensor: non-empty string
//   - value: JSON number or numeric string (0 is valid)
//
// Unknown fields are ignored, including any inbound timestamp.
func Decode(payload []byte, now time.Time) (Reading, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return Reading{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if fields == nil {
		return Reading{}, fmt.Errorf("%w: payload is null", ErrMalformedPayload)
	}

	stamped := now.UTC().Truncate(time.Millisecond)
	r := Reading{
		Timestamp:  stamped.Format(TimestampLayout),
		RecordedAt: stamped,
	}

	var err error
	if r.PondID, err = pondID(fields["idkolam"]); err != nil {
		return Reading{}, err
	}
	if r.SensorType, err = sensorType(fields["jenis_sensor"]); err != nil {
		return Reading{}, err
	}
	if r.Value, err = value(fields["value"]); err != nil {
		return Reading{}, err
	}

	return r, nil
}

func pondID(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: idkolam", ErrMissingField)
	case json.Number:
		id, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: idkolam %q is not an integer", ErrInvalidField, t.String())
		}
		return id, nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: idkolam %q is not an integer", ErrInvalidField, t)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("%w: idkolam has type %T", ErrInvalidField, v)
	}
}

func sensorType(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", fmt.Errorf("%w: jenis_sensor", ErrMissingField)
	case string:
		if strings.TrimSpace(t) == "" {
			return "", fmt.Errorf("%w: jenis_sensor is empty", ErrInvalidField)
		}
		return t, nil
	default:
		return "", fmt.Errorf("%w: jenis_sensor has type %T", ErrInvalidField, v)
	}
}

func value(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: value", ErrMissingField)
	case json.Number:
		f, err := t.Float64()
		if err != nil || !finite(f) {
			return 0, fmt.Errorf("%w: value %q", ErrInvalidField, t.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: value %q is not numeric", ErrInvalidField, t)
		}
		if !finite(f) {
			return 0, fmt.Errorf("%w: value %q is not finite", ErrInvalidField, t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: value has type %T", ErrInvalidField, v)
	}
}

// finite rejects NaN and infinities, which neither JSON nor the mirror can carry.
func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
