package facts

import "errors"

// ErrValidation marks a value object built from out-of-range input.
var ErrValidation = errors.New("validation error")
