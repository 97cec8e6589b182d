package main

import (
	"weekchain/internal/orchestrator/core"
	"weekchain/internal/orchestrator/handler"
	"weekchain/internal/orchestrator/service"
	"weekchain/pkg/app"
	"weekchain/pkg/config"
)

const ServiceName = "orchestrator"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Client.SetMatcherClient(cfg.MatcherURL)
	cfg.Client.SetCapacityClient(cfg.CapacityURL)
	cfg.Client.SetReservationClient(cfg.ReservationsURL)

	cfg.Log.Info("Starting Orchestrator service",
		"matcher_url", cfg.MatcherURL,
		"capacity_url", cfg.CapacityURL,
		"reservations_url", cfg.ReservationsURL,
	)

	orchestrator := service.NewOrchestratorService(&core.Clients{
		Matcher:      cfg.Client.Matcher,
		Capacity:     cfg.Client.Capacity,
		Reservations: cfg.Client.Reservations,
	}, cfg.Log)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewFlowHandler(orchestrator, cfg.Log))
	serverApp.Run()
}
