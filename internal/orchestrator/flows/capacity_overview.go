package flows

import (
	"weekchain/internal/orchestrator/core"
	"weekchain/pkg/model"

	"golang.org/x/sync/errgroup"
)

func CapacityOverview() core.Flow {
	return core.NewFlow(CapacityOverviewFlow,
		core.NewStep("global_status", FetchGlobalStatus),
		core.NewStep("tier_decisions", FetchTierDecisions),
	)
}

func FetchGlobalStatus(ctx *core.FlowContext) error {
	status, err := ctx.Clients.Capacity.Status(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Output[CAPACITY] = status
	return nil
}

// FetchTierDecisions asks the gate about every tier concurrently. Results are ordered like model.AllTiers.
func FetchTierDecisions(ctx *core.FlowContext) error {
	decisions := make([]model.AdmissionDecision, len(model.AllTiers))

	g, gctx := errgroup.WithContext(ctx.Ctx)
	g.SetLimit(core.MaxConcurrentCalls)
	for i, tier := range model.AllTiers {
		g.Go(func() error {
			decision, err := ctx.Clients.Capacity.CanSell(gctx, tier)
			if err != nil && decision == nil {
				return err
			}
			decisions[i] = *decision
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	ctx.Output[DECISIONS] = decisions
	return nil
}
