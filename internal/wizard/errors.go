package wizard

import "errors"

var (
	// ErrInvalidTransition indicates an operation not allowed in the
	// current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrNoInstances indicates discovery found no legacy installation.
	ErrNoInstances = errors.New("no legacy installation found")

	// ErrInvalidSelection indicates an instance index out of range.
	ErrInvalidSelection = errors.New("invalid instance selection")

	// ErrUnknownMod indicates a mod file name not in the parsed list.
	ErrUnknownMod = errors.New("unknown mod")
)
