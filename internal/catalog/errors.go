package catalog

import "errors"

var (
	// ErrProfileNotFound is returned when a profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileExists is returned when creating a profile whose ID is taken.
	ErrProfileExists = errors.New("profile already exists")
)
