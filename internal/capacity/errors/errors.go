package errors

import "errors"

var (
	ErrUnknownTier = errors.New("unknown capacity tier")

	ErrTierNotFound = errors.New("tier ledger row not found")

	// ErrConcurrentUpdate means the active count changed between read and compare-and-set.
	ErrConcurrentUpdate = errors.New("tier active count changed concurrently")

	ErrStoreUnavailable = errors.New("capacity store unavailable")
)
