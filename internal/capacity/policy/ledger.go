package policy

import (
	"math"
	"time"

	"weekchain/pkg/model"
)

// TotalSalesCap bounds sales summed over every tier; zero means uncapped.
type Thresholds struct {
	GreenMax      float64
	YellowMax     float64
	SafeFraction  float64
	TotalSalesCap int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GreenMax:     0.50,
		YellowMax:    0.65,
		SafeFraction: 0.70,
	}
}

// Ledger turns raw tier counts into utilization figures. It holds no counts of its own;
// every evaluation works on the rows it is handed.
type Ledger struct {
	thresholds Thresholds
}

func NewLedger(thresholds Thresholds) *Ledger {
	return &Ledger{thresholds: thresholds}
}

func (l *Ledger) Thresholds() Thresholds {
	return l.thresholds
}

// Utilization is active/total. A tier without supply reports zero.
func Utilization(active, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(active) / float64(total)
}

// StopSale reports whether the tier has reached its safe-capacity ceiling.
// A tier without supply can never sell.
func (l *Ledger) StopSale(active, total int) bool {
	if total <= 0 {
		return true
	}
	return Utilization(active, total) >= l.thresholds.SafeFraction
}

// CapReached reports whether sold has used up cap. A zero cap never binds.
func CapReached(sold, cap int) bool {
	return cap > 0 && sold >= cap
}

// Level maps an aggregate utilization ratio to the three-state semaphore.
func (l *Ledger) Level(utilization float64) model.StatusLevel {
	switch {
	case utilization < l.thresholds.GreenMax:
		return model.StatusGreen
	case utilization < l.thresholds.YellowMax:
		return model.StatusYellow
	default:
		return model.StatusRed
	}
}

func (l *Ledger) EvaluateTier(count model.TierCount) model.CapacityTier {
	u := Utilization(count.ActiveSold, count.TotalSupply)
	return model.CapacityTier{
		Tier:               count.Tier,
		TotalSupply:        count.TotalSupply,
		ActiveSold:         count.ActiveSold,
		SafeFraction:       l.thresholds.SafeFraction,
		Utilization:        u,
		UtilizationPercent: percent(u),
		StopSale:           l.StopSale(count.ActiveSold, count.TotalSupply),
		SalesEnabled:       count.SalesEnabled,
		SalesCap:           count.SalesCap,
		SalesCapReached:    CapReached(count.ActiveSold, count.SalesCap),
	}
}

// Evaluate computes the global status from the given rows. Every known tier appears in
// the result in canonical order; a tier without a row is reported with zero supply.
// Rows are keyed by canonical tier name; rows for unknown tiers are ignored.
func (l *Ledger) Evaluate(counts []model.TierCount, now time.Time) model.GlobalCapacityStatus {
	byTier := make(map[model.Tier]model.TierCount, len(counts))
	for _, c := range counts {
		tier, err := model.ParseTier(string(c.Tier))
		if err != nil {
			continue
		}
		c.Tier = tier
		byTier[tier] = c
	}

	status := model.GlobalCapacityStatus{
		Tiers:       make([]model.CapacityTier, 0, len(model.AllTiers)),
		EvaluatedAt: now.UTC(),
	}

	for _, tier := range model.AllTiers {
		c, ok := byTier[tier]
		if !ok {
			c = model.TierCount{Tier: tier}
		}
		status.TotalSupply += c.TotalSupply
		status.ActiveSold += c.ActiveSold
		status.Tiers = append(status.Tiers, l.EvaluateTier(c))
	}

	status.Utilization = Utilization(status.ActiveSold, status.TotalSupply)
	status.UtilizationPercent = percent(status.Utilization)
	status.Status = l.Level(status.Utilization)
	status.SalesCap = l.thresholds.TotalSalesCap
	status.SalesCapReached = CapReached(status.ActiveSold, status.SalesCap)

	gate := NewGate()
	for _, t := range status.Tiers {
		if !gate.Decide(&status, t.Tier).Allowed {
			status.WaitlistEnabled = true
			break
		}
	}

	return status
}

func percent(ratio float64) float64 {
	return math.Round(ratio*10000) / 100
}
