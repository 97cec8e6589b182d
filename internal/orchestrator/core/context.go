package core

import (
	"context"

	"weekchain/pkg/logger"
	"weekchain/pkg/model"
)

type Matcher interface {
	FindBest(ctx context.Context, req *model.MatchRequest) (*model.MatchResponse, error)
	FindAlternatives(ctx context.Context, req *model.AlternativesRequest) (*model.AlternativesResponse, error)
}

type Capacity interface {
	Status(ctx context.Context) (*model.GlobalCapacityStatus, error)
	CanSell(ctx context.Context, tier model.Tier) (*model.AdmissionDecision, error)
	CommitSale(ctx context.Context, tier model.Tier) (*model.GlobalCapacityStatus, error)
}

type Reservations interface {
	Commit(ctx context.Context, commit *model.ReservationCommit) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) error
}

// Clients are the downstream services a flow may call.
type Clients struct {
	Matcher      Matcher
	Capacity     Capacity
	Reservations Reservations
}

type FlowContext struct {
	Ctx     context.Context
	Input   map[string]any
	Process map[string]any
	Output  map[string]any
	Clients *Clients
	Log     *logger.Logger

	halted bool
}

func NewFlowContext(ctx context.Context, input map[string]any, clients *Clients, log *logger.Logger) *FlowContext {
	return &FlowContext{
		Ctx:     ctx,
		Input:   input,
		Process: make(map[string]any),
		Output:  make(map[string]any),
		Clients: clients,
		Log:     log,
	}
}

// Halt ends the flow successfully after the current step.
func (c *FlowContext) Halt() {
	c.halted = true
}

func (c *FlowContext) Halted() bool {
	return c.halted
}

func (c *FlowContext) Flag(key string) bool {
	v, _ := c.Process[key].(bool)
	return v
}
