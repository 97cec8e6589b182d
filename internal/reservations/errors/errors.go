package errors

import "errors"

var (
	ErrInvalidDateRange = errors.New("check_out must be after check_in")

	ErrLockHeld = errors.New("unit is being reserved by another request")

	ErrPartyTooLarge = errors.New("party_size exceeds the unit's max occupancy")

	ErrStoreUnavailable = errors.New("reservation store unavailable")
)
