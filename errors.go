package webtree

import "errors"

var (
	// ErrDestinationExists is returned when the output root already exists.
	// Nothing is created or removed in this case.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrInconsistentRepository is returned when a manifest or catalog
	// references data the repository cannot resolve.
	ErrInconsistentRepository = errors.New("repository inconsistency")

	// ErrPayloadMismatch is returned by the optional verification pass when
	// a stored payload does not hash to the value its action declares.
	ErrPayloadMismatch = errors.New("payload hash mismatch")

	// ErrInvalidFMRI is returned when a package identifier cannot be parsed.
	ErrInvalidFMRI = errors.New("invalid package FMRI")
)
