package errors

import "errors"

var (
	ErrUnitNotFound = errors.New("inventory unit not found")

	ErrReservationNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid identifier format")

	ErrDuplicate = errors.New("record already exists")
)
