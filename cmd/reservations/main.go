package main

import (
	"weekchain/internal/inventory/repository"
	"weekchain/internal/reservations/handler"
	"weekchain/internal/reservations/service"
	"weekchain/internal/reservations/validator"
	"weekchain/pkg/app"
	"weekchain/pkg/config"
	"weekchain/pkg/kafka"
	kafka_config "weekchain/pkg/kafka/config"
	kafka_middleware "weekchain/pkg/kafka/middleware"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")
	publisher := initPublisher(cfg)
	reservationService := initServices(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.AddCloser(publisher)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) kafka.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	metrics := kafka_middleware.NewMetrics()
	publisher, err := kafka.NewPublisher(kafkaCfg, cfg.Log, cfg.ReservationTopic, cfg.DLQTopic,
		kafka_middleware.LoggingProducerMiddleware(cfg.Log),
		metrics.ProducerMiddleware(),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create reservation event publisher", "error", err)
	}
	cfg.Log.Info("Reservation events configured", "enabled", kafkaCfg.Enabled, "topic", cfg.ReservationTopic)
	return publisher
}

func initServices(cfg *config.Config, publisher kafka.Publisher) service.ReservationService {
	reservationService := service.NewReservationService(
		repository.NewMongoUnitRepository(cfg),
		repository.NewMongoReservationRepository(cfg),
		repository.NewLockRepository(cfg),
		validator.NewReservationValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservations service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}
