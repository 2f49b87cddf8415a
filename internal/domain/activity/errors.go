package activity

import "errors"

// ErrInvalidInput indicates an activity entry without an item or type.
var ErrInvalidInput = errors.New("invalid activity input")
