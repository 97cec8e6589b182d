package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryerrors "weekchain/internal/inventory/errors"
	"weekchain/pkg/config"
	mongotx "weekchain/pkg/db/mongo"
	"weekchain/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UnitsCollection = "Units"
)

type UnitRepository interface {
	ListActiveUnits(ctx context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error)
	FindByID(ctx context.Context, id string) (*model.InventoryUnit, error)
	Upsert(ctx context.Context, unit *model.InventoryUnit) error
	Count(ctx context.Context) (int64, error)
}

type mongoUnitRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUnitRepository(cfg *config.Config) UnitRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoUnitRepository{
		cfg:        cfg,
		collection: db.Collection(UnitsCollection),
	}
}

// ActiveUnitsFilter builds the hard filter query shared with the migration indexes.
func ActiveUnitsFilter(filter model.UnitFilter) bson.M {
	query := bson.M{
		"status":        model.UnitStatusActive,
		"max_occupancy": bson.M{"$gte": filter.MinOccupancy},
	}
	if filter.Tier != "" {
		query["tier"] = filter.Tier
	}
	return query
}

func (r *mongoUnitRepository) ListActiveUnits(ctx context.Context, filter model.UnitFilter) ([]*model.InventoryUnit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, ActiveUnitsFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active units: %w", err)
	}
	defer cursor.Close(ctx)

	units := []*model.InventoryUnit{}
	if err = cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode units: %w", err)
	}

	return units, nil
}

func (r *mongoUnitRepository) FindByID(ctx context.Context, id string) (*model.InventoryUnit, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var unit model.InventoryUnit
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&unit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, inventoryerrors.ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to find unit: %w", err)
	}

	return &unit, nil
}

func (r *mongoUnitRepository) Upsert(ctx context.Context, unit *model.InventoryUnit) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": unit.ID}, unit, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert unit %s: %w", unit.ID, err)
	}
	return nil
}

func (r *mongoUnitRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count units: %w", err)
	}
	return count, nil
}
