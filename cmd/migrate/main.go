package main

import (
	"context"
	"fmt"
	"os"
	"time"

	capacityrepo "weekchain/internal/capacity/repository"
	inventorypg "weekchain/internal/inventory/postgres"
	inventoryrepo "weekchain/internal/inventory/repository"
	"weekchain/internal/matching/validator"
	mongoMigration "weekchain/internal/migrations/mongo"
	pgMigration "weekchain/internal/migrations/postgres"
	"weekchain/internal/migrations/seed"
	"weekchain/pkg/config"

	"github.com/urfave/cli/v2"
)

const JobName = "migrate"

func main() {
	app := &cli.App{
		Name:  JobName,
		Usage: "Create collections, indexes and tables, optionally loading an inventory fixture",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "seed",
				Usage: "path to a JSON fixture with units and tier counts",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 120 * time.Second,
				Usage: "overall deadline for the job",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetStore()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "store", cfg.StoreDriver)
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo.Client, cfg.MongoDatabaseName, cfg.Log); err != nil {
		return fmt.Errorf("mongo migration: %w", err)
	}
	if cfg.Client.Postgres != nil {
		if err := pgMigration.Apply(ctx, cfg.Client.Postgres, cfg.Log); err != nil {
			return fmt.Errorf("postgres migration: %w", err)
		}
	}

	if path := c.String("seed"); path != "" {
		if err := applySeed(ctx, cfg, path); err != nil {
			return err
		}
	}

	cfg.Log.Info("Migration completed successfully")
	return nil
}

func applySeed(ctx context.Context, cfg *config.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	fixture, err := seed.Load(f, validator.NewMatchValidator(cfg.Log))
	if err != nil {
		return err
	}

	writers := []seed.UnitWriter{inventoryrepo.NewMongoUnitRepository(cfg)}
	if cfg.Client.Postgres != nil {
		writers = append(writers, seed.UnitWriterFunc(inventorypg.NewStore(cfg.Client.Postgres).UpsertUnit))
	}
	return seed.Apply(ctx, fixture, writers, capacityrepo.NewMongoTierRepository(cfg), cfg.Log)
}
