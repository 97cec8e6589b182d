package policy

import "weekchain/pkg/model"

// Gate answers go/no-go for a tier against an evaluated status.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Decide denies when the tier is at its ceiling or sales cap, the total sales cap is
// used up, the system is RED, or an administrator disabled the tier. YELLOW never denies.
func (g *Gate) Decide(status *model.GlobalCapacityStatus, tier model.Tier) model.AdmissionDecision {
	decision := model.AdmissionDecision{Tier: tier, Global: status.Status}

	t, ok := status.TierStatus(tier)
	switch {
	case !ok:
		decision.Reason = model.DenyReasonUnknownTier
	case t.StopSale:
		decision.Reason = model.DenyReasonTierCeiling
	case t.SalesCapReached:
		decision.Reason = model.DenyReasonTierCap
	case status.SalesCapReached:
		decision.Reason = model.DenyReasonTotalCap
	case status.Status == model.StatusRed:
		decision.Reason = model.DenyReasonGlobalRed
	case !t.SalesEnabled:
		decision.Reason = model.DenyReasonDisabled
	default:
		decision.Allowed = true
	}
	return decision
}

// Denied builds the fail-closed decision returned when counts cannot be read.
func Denied(tier model.Tier, reason string) model.AdmissionDecision {
	return model.AdmissionDecision{Tier: tier, Allowed: false, Reason: reason}
}
