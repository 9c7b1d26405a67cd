package repository

import "errors"

var (
	// ErrConflict is returned by a conditional write when the stored version no longer
	// matches the version the caller read.
	ErrConflict = errors.New("portfolio version conflict")
	// ErrStorageUnavailable wraps transport and deserialization failures of a backend.
	ErrStorageUnavailable = errors.New("portfolio storage unavailable")
)
