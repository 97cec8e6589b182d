package main

import (
	"weekchain/internal/capacity/handler"
	"weekchain/internal/capacity/repository"
	"weekchain/internal/capacity/service"
	"weekchain/internal/capacity/validator"
	"weekchain/pkg/app"
	"weekchain/pkg/config"
	"weekchain/pkg/kafka"
	kafka_config "weekchain/pkg/kafka/config"
	kafka_middleware "weekchain/pkg/kafka/middleware"
)

const ServiceName = "capacity"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Capacity service")
	publisher := initPublisher(cfg)
	capacityService := initServices(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewCapacityHandler(capacityService, cfg.Log))
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
	publisher, err := kafka.NewPublisher(kafkaCfg, cfg.Log, cfg.CapacityTopic, cfg.DLQTopic,
		kafka_middleware.LoggingProducerMiddleware(cfg.Log),
		metrics.ProducerMiddleware(),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create capacity event publisher", "error", err)
	}
	cfg.Log.Info("Capacity events configured", "enabled", kafkaCfg.Enabled, "topic", cfg.CapacityTopic)
	return publisher
}

func initServices(cfg *config.Config, publisher kafka.Publisher) service.CapacityService {
	capacityService := service.NewCapacityService(
		repository.NewMongoTierRepository(cfg),
		validator.NewToggleValidator(cfg.Log),
		publisher,
		cfg,
	)

	cfg.Log.Info("Capacity service initialized", "database", cfg.MongoDatabaseName)
	return capacityService
}
