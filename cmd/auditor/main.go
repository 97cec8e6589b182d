package main

import (
	"weekchain/internal/snapshots/handler"
	"weekchain/internal/snapshots/repository"
	"weekchain/internal/snapshots/service"
	"weekchain/pkg/app"
	"weekchain/pkg/config"
	"weekchain/pkg/kafka"
	kafka_config "weekchain/pkg/kafka/config"
	kafka_middleware "weekchain/pkg/kafka/middleware"
)

const ServiceName = "auditor"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Auditor service")
	snapshotService := service.NewSnapshotService(repository.NewMongoSnapshotRepository(cfg), cfg)
	metrics := kafka_middleware.NewMetrics()
	consumer := initConsumer(cfg, snapshotService, metrics)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewSnapshotHandler(snapshotService, metrics, cfg.Log).WithLag(consumer.Lag))
	serverApp.AddWorker(consumer)
	serverApp.AddCloser(consumer)
	serverApp.Run()
}

func initConsumer(cfg *config.Config, snapshotService service.SnapshotService, metrics *kafka_middleware.Metrics) *kafka.Consumer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)
	if !kafkaCfg.Enabled {
		cfg.Log.Fatal("Auditor requires Kafka; set KAFKA_ENABLED=true")
	}

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, cfg.CapacityTopic, cfg.AuditorGroupID, cfg.DLQTopic, snapshotService.HandleMessage)
	if err != nil {
		cfg.Log.Fatal("Failed to create capacity consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}
	consumer.Use(metrics.ConsumerMiddleware())

	cfg.Log.Info("Capacity consumer configured", "topic", cfg.CapacityTopic, "group_id", cfg.AuditorGroupID)
	return consumer
}
