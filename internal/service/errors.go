package service

import "errors"

var (
	// ErrContention is returned when a mutation kept losing the optimistic concurrency
	// race until the retry budget ran out.
	ErrContention         = errors.New("portfolio update contention, retries exhausted")
	ErrStorageUnavailable = errors.New("ledger storage failure")
)
