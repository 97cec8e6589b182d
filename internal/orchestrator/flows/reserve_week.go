package flows

import (
	"weekchain/internal/orchestrator/core"
	"weekchain/internal/orchestrator/types"
	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/model"
)

// ReserveWeek admits, matches and reserves a week, falling back to alternatives when the
// best match is gone or nothing matched.
func ReserveWeek() core.Flow {
	return core.NewFlow(ReserveWeekFlow,
		core.NewStep("parse_input", ParseReserveWeekInput),
		core.NewStep("check_admission", CheckAdmission),
		core.NewStep("find_match", FindMatch),
		core.NewStep("commit_reservation", CommitReservation),
		core.NewStep("commit_sale", CommitSale),
		core.NewStep("find_alternatives", FindAlternatives),
	)
}

func ParseReserveWeekInput(ctx *core.FlowContext) error {
	input, err := types.FromMapReserveWeek(ctx.Input)
	if err != nil {
		return err
	}
	ctx.Process[INPUT] = input
	return nil
}

func CheckAdmission(ctx *core.FlowContext) error {
	input := ctx.Process[INPUT].(*types.ReserveWeekInput)

	decision, err := ctx.Clients.Capacity.CanSell(ctx.Ctx, input.Tier)
	if decision != nil {
		ctx.Output[DECISION] = decision
	}
	if err != nil {
		return err
	}
	if !decision.Allowed {
		ctx.Output[OUTCOME] = types.OutcomeWaitlisted
		ctx.Halt()
	}
	return nil
}

func FindMatch(ctx *core.FlowContext) error {
	input := ctx.Process[INPUT].(*types.ReserveWeekInput)

	resp, err := ctx.Clients.Matcher.FindBest(ctx.Ctx, input.MatchRequest())
	if err != nil {
		return err
	}
	if !resp.Matched || resp.Match == nil {
		ctx.Process[NEED_ALTERNATIVES] = true
		return nil
	}
	ctx.Process[MATCH] = resp.Match
	ctx.Output[MATCH] = resp.Match
	return nil
}

// CommitReservation turns the match into a reservation. Losing the unit to a concurrent
// commit is not an error; the flow moves on to alternatives.
func CommitReservation(ctx *core.FlowContext) error {
	if ctx.Flag(NEED_ALTERNATIVES) {
		return nil
	}
	input := ctx.Process[INPUT].(*types.ReserveWeekInput)
	match := ctx.Process[MATCH].(*model.PropertyMatch)

	reservation, err := ctx.Clients.Reservations.Commit(ctx.Ctx, input.Commit(match))
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeMatchUnavailable) {
			ctx.Log.Info("matched unit taken, falling back to alternatives", "unit_id", match.Unit.ID)
			ctx.Process[NEED_ALTERNATIVES] = true
			ctx.Process[EXCLUDE_UNIT_ID] = match.Unit.ID
			delete(ctx.Output, MATCH)
			return nil
		}
		return err
	}
	ctx.Process[RESERVATION] = reservation
	return nil
}

// CommitSale books the sale against the tier admission was checked for. The matcher
// only offers units of that tier. When the ledger refuses the sale the reservation is
// cancelled again and the buyer is waitlisted.
func CommitSale(ctx *core.FlowContext) error {
	reservation, ok := ctx.Process[RESERVATION].(*model.Reservation)
	if !ok {
		return nil
	}
	input := ctx.Process[INPUT].(*types.ReserveWeekInput)

	status, err := ctx.Clients.Capacity.CommitSale(ctx.Ctx, input.Tier)
	if err != nil {
		if cancelErr := ctx.Clients.Reservations.Cancel(ctx.Ctx, reservation.ID); cancelErr != nil {
			ctx.Log.Error("failed to cancel reservation after refused sale",
				"reservation_id", reservation.ID,
				"error", cancelErr,
				"cause", err,
			)
		}
		if apperrors.HasCode(err, apperrors.CodeStopSale) {
			ctx.Output[OUTCOME] = types.OutcomeWaitlisted
			ctx.Output[DECISION] = model.AdmissionDecision{
				Tier:   input.Tier,
				Reason: stopSaleReason(err),
			}
			delete(ctx.Output, MATCH)
			ctx.Halt()
			return nil
		}
		return err
	}

	ctx.Output[OUTCOME] = types.OutcomeReserved
	ctx.Output[RESERVATION] = reservation
	ctx.Output[CAPACITY] = status
	ctx.Halt()
	return nil
}

func FindAlternatives(ctx *core.FlowContext) error {
	if !ctx.Flag(NEED_ALTERNATIVES) {
		return nil
	}
	input := ctx.Process[INPUT].(*types.ReserveWeekInput)
	exclude, _ := ctx.Process[EXCLUDE_UNIT_ID].(string)

	resp, err := ctx.Clients.Matcher.FindAlternatives(ctx.Ctx, &model.AlternativesRequest{
		MatchRequest:  *input.MatchRequest(),
		ExcludeUnitID: exclude,
		Limit:         input.AlternativesLimit,
	})
	if err != nil {
		return err
	}

	alternatives := resp.Alternatives
	if alternatives == nil {
		alternatives = []model.PropertyMatch{}
	}
	ctx.Output[OUTCOME] = types.OutcomeAlternatives
	ctx.Output[ALTERNATIVES] = alternatives
	return nil
}

func stopSaleReason(err error) string {
	reason, _ := apperrors.AsAppError(err).Details["reason"].(string)
	return reason
}
