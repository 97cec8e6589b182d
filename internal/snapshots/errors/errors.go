package errors

import "errors"

var (
	ErrEventMalformed = errors.New("capacity event is malformed")

	ErrStoreUnavailable = errors.New("snapshot store unavailable")
)
