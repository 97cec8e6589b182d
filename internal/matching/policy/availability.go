package policy

import "weekchain/pkg/model"

// IsAvailable reports whether rng overlaps none of the booked ranges. Ranges are half-open,
// so a stay may start on the day another ends. The caller guarantees rng.Start < rng.End.
func IsAvailable(rng model.DateRange, booked []model.DateRange) bool {
	for _, b := range booked {
		if rng.Overlaps(b) {
			return false
		}
	}
	return true
}
