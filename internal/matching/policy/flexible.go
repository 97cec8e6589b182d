package policy

import "weekchain/pkg/model"

// Candidate is a date range to test, tagged with its shift from the requested range.
type Candidate struct {
	Range      model.DateRange
	OffsetDays int
}

// CandidateRanges lists the requested range followed by week-aligned shifts within flexDays,
// nearest first and earlier before later on ties: 0, -7, +7, -14, +14, ...
// A stepDays below one yields only the requested range.
func CandidateRanges(rng model.DateRange, flexDays, stepDays int) []Candidate {
	candidates := []Candidate{{Range: rng, OffsetDays: 0}}
	if flexDays <= 0 || stepDays <= 0 {
		return candidates
	}

	for offset := stepDays; offset <= flexDays; offset += stepDays {
		candidates = append(candidates,
			Candidate{Range: rng.Shift(-offset), OffsetDays: -offset},
			Candidate{Range: rng.Shift(offset), OffsetDays: offset},
		)
	}
	return candidates
}

// FirstAvailable returns the first candidate free of the booked ranges.
func FirstAvailable(candidates []Candidate, booked []model.DateRange) (Candidate, bool) {
	for _, c := range candidates {
		if IsAvailable(c.Range, booked) {
			return c, true
		}
	}
	return Candidate{}, false
}
