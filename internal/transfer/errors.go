package transfer

import "errors"

var (
	// ErrDestinationInsideSource indicates a target directory lies inside one
	// of the legacy roots, which are never written to.
	ErrDestinationInsideSource = errors.New("destination inside legacy installation")

	// ErrSourceNotFound indicates an unpacked file exists in none of the
	// legacy roots.
	ErrSourceNotFound = errors.New("source file not found")
)
