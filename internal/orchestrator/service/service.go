package service

import (
	"context"

	"weekchain/internal/orchestrator/core"
	"weekchain/internal/orchestrator/flows"
	"weekchain/pkg/logger"
)

type OrchestratorService struct {
	engine  *core.Engine
	clients *core.Clients
	log     *logger.Logger
}

func NewOrchestratorService(clients *core.Clients, log *logger.Logger) *OrchestratorService {
	return &OrchestratorService{
		engine: core.NewEngine(
			flows.ReserveWeek(),
			flows.CapacityOverview(),
		),
		clients: clients,
		log:     log,
	}
}

func (s *OrchestratorService) ExecuteFlow(ctx context.Context, flowName string, input map[string]any) (map[string]any, error) {
	fctx := core.NewFlowContext(ctx, input, s.clients, s.log.With("flow", flowName))
	if err := s.engine.Run(flowName, fctx); err != nil {
		return nil, err
	}
	return fctx.Output, nil
}

func (s *OrchestratorService) GetAvailableFlows() []string {
	return s.engine.Flows()
}
