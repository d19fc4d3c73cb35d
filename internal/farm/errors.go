package farm

import "errors"

// ErrFarmNotFound is returned when no farm matches the given id or name.
var ErrFarmNotFound = errors.New("farm not found")
