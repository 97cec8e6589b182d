package policy

import (
	"sort"
	"strings"

	"weekchain/pkg/model"
)

type Weights struct {
	Exact          int
	FlexBase       int
	Alternative    int
	CityBonus      int
	CountryBonus   int
	CategoryBonus  int
	OccupancyBonus int
	OccupancySlack int
}

func DefaultWeights() Weights {
	return Weights{
		Exact:          100,
		FlexBase:       80,
		Alternative:    50,
		CityBonus:      50,
		CountryBonus:   25,
		CategoryBonus:  30,
		OccupancyBonus: 20,
		OccupancySlack: 2,
	}
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

func (s *Scorer) Weights() Weights {
	return s.weights
}

// ScoreExact scores a unit free on the requested dates.
func (s *Scorer) ScoreExact(unit *model.InventoryUnit, req *model.MatchRequest) int {
	score := s.weights.Exact

	if dest := normalize(req.Destination); dest != "" {
		if strings.Contains(normalize(unit.City), dest) {
			score += s.weights.CityBonus
		} else if strings.Contains(normalize(unit.Country), dest) {
			score += s.weights.CountryBonus
		}
	}

	if HasCategoryPreference(req.Category) && strings.EqualFold(unit.Category, strings.TrimSpace(req.Category)) {
		score += s.weights.CategoryBonus
	}

	fit := unit.MaxOccupancy - req.PartySize
	if fit >= 0 && fit <= s.weights.OccupancySlack {
		score += s.weights.OccupancyBonus
	}

	return score
}

// ScoreFlexible scores a shifted range. It carries no preference bonuses, so any exact
// candidate outranks every flexible one.
func (s *Scorer) ScoreFlexible(offsetDays int) int {
	if offsetDays < 0 {
		offsetDays = -offsetDays
	}
	return s.weights.FlexBase - offsetDays
}

func (s *Scorer) ScoreAlternative() int {
	return s.weights.Alternative
}

func HasCategoryPreference(category string) bool {
	c := normalize(category)
	return c != "" && c != model.CategoryAny
}

func MatchesDestination(unit *model.InventoryUnit, destination string) bool {
	dest := normalize(destination)
	if dest == "" {
		return true
	}
	return strings.Contains(normalize(unit.City), dest) || strings.Contains(normalize(unit.Country), dest)
}

func MatchesCategory(unit *model.InventoryUnit, category string) bool {
	if !HasCategoryPreference(category) {
		return true
	}
	return strings.EqualFold(unit.Category, strings.TrimSpace(category))
}

// SoftFilter narrows units by destination and category preference. When nothing survives,
// the full hard-filtered set is returned so a preference never starves the buyer.
func SoftFilter(units []*model.InventoryUnit, req *model.MatchRequest) []*model.InventoryUnit {
	filtered := make([]*model.InventoryUnit, 0, len(units))
	for _, u := range units {
		if MatchesDestination(u, req.Destination) && MatchesCategory(u, req.Category) {
			filtered = append(filtered, u)
		}
	}
	if len(filtered) == 0 {
		return units
	}
	return filtered
}

// Rank orders matches by score, highest first, preserving input order on ties.
func Rank(matches []model.PropertyMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
