package repository

import (
	"context"
	"fmt"

	"weekchain/pkg/config"
	mongotx "weekchain/pkg/db/mongo"
	"weekchain/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SnapshotsCollection = "Capacity_snapshots"
)

type SnapshotRepository interface {
	Insert(ctx context.Context, snapshot *model.CapacitySnapshot) error
	List(ctx context.Context, limit int, offset int64) ([]*model.CapacitySnapshot, error)
	Count(ctx context.Context) (int64, error)
}

type mongoSnapshotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSnapshotRepository(cfg *config.Config) SnapshotRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSnapshotRepository{
		cfg:        cfg,
		collection: db.Collection(SnapshotsCollection),
	}
}

// Insert ignores duplicate ids so a redelivered event is stored once.
func (r *mongoSnapshotRepository) Insert(ctx context.Context, snapshot *model.CapacitySnapshot) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, snapshot); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (r *mongoSnapshotRepository) List(ctx context.Context, limit int, offset int64) ([]*model.CapacitySnapshot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	snapshots := []*model.CapacitySnapshot{}
	if err = cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *mongoSnapshotRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}
