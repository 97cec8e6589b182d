package errors

import "errors"

var (
	ErrInvalidDateRange = errors.New("end_date must be after start_date")

	ErrFlexibilityTooWide = errors.New("flexibility_days exceeds the configured maximum")

	ErrInventoryUnavailable = errors.New("inventory store unavailable")
)
