package fact

import "errors"

var (
	// ErrInvalidFact indicates a fact missing required envelope fields.
	ErrInvalidFact = errors.New("invalid fact")
)
