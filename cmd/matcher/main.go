package main

import (
	"weekchain/internal/inventory/postgres"
	"weekchain/internal/inventory/replication"
	"weekchain/internal/inventory/repository"
	"weekchain/internal/matching/handler"
	"weekchain/internal/matching/service"
	"weekchain/internal/matching/validator"
	"weekchain/pkg/app"
	"weekchain/pkg/config"
	"weekchain/pkg/kafka"
	kafka_config "weekchain/pkg/kafka/config"
	kafka_middleware "weekchain/pkg/kafka/middleware"
)

const ServiceName = "matcher"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetStore()

	cfg.Log.Info("Starting Matcher service")
	serverApp := app.NewApplication()
	matchService := initServices(cfg, serverApp)
	serverApp.SetApp(cfg, handler.NewMatchHandler(matchService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, serverApp *app.Application) service.MatchService {
	var (
		units        service.UnitReader
		reservations service.ReservationReader
	)
	if cfg.StoreDriver == config.StoreDriverPostgres {
		store := postgres.NewStore(cfg.Client.Postgres)
		units, reservations = store, store
		initReplication(cfg, serverApp, store)
	} else {
		units = repository.NewMongoUnitRepository(cfg)
		reservations = repository.NewMongoReservationRepository(cfg)
	}

	matchService := service.NewMatchService(
		units,
		reservations,
		validator.NewMatchValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Matcher service initialized", "store", cfg.StoreDriver)
	return matchService
}

// initReplication keeps the Postgres read store in step with reservation events.
func initReplication(cfg *config.Config, serverApp *app.Application, store *postgres.Store) {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)
	if !kafkaCfg.Enabled {
		cfg.Log.Warn("Kafka disabled; Postgres reservations will not be replicated")
		return
	}

	replicator := replication.NewReplicator(store, cfg.Log)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, cfg.ReservationTopic, cfg.ReplicaGroupID, cfg.DLQTopic, replicator.HandleMessage)
	if err != nil {
		cfg.Log.Fatal("Failed to create reservation consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	serverApp.AddWorker(consumer)
	serverApp.AddCloser(consumer)
	cfg.Log.Info("Reservation replication configured", "topic", cfg.ReservationTopic, "group_id", cfg.ReplicaGroupID)
}
