package payload

import "errors"

// ErrNotObject is returned when a JSON payload is valid but not an object.
var ErrNotObject = errors.New("expected a JSON object payload")
