package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	capacityerrors "weekchain/internal/capacity/errors"
	"weekchain/pkg/config"
	mongotx "weekchain/pkg/db/mongo"
	"weekchain/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TiersCollection = "Capacity_tiers"
)

// TierRepository stores one ledger row per tier keyed by the tier name.
type TierRepository interface {
	ListTierCounts(ctx context.Context) ([]model.TierCount, error)
	FindByTier(ctx context.Context, tier model.Tier) (*model.TierCount, error)
	CompareAndSetActive(ctx context.Context, tier model.Tier, expected, next int) error
	SetSalesEnabled(ctx context.Context, tier model.Tier, enabled bool, actor string) error
	Upsert(ctx context.Context, count *model.TierCount) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoTierRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoTierRepository(cfg *config.Config) TierRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTierRepository{
		cfg:        cfg,
		collection: db.Collection(TiersCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoTierRepository) ListTierCounts(ctx context.Context) ([]model.TierCount, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list tier counts: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []model.TierCount{}
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode tier counts: %w", err)
	}
	return counts, nil
}

func (r *mongoTierRepository) FindByTier(ctx context.Context, tier model.Tier) (*model.TierCount, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var count model.TierCount
	err := r.collection.FindOne(ctx, bson.M{"_id": tier}).Decode(&count)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, capacityerrors.ErrTierNotFound
		}
		return nil, fmt.Errorf("failed to find tier %s: %w", tier, err)
	}
	return &count, nil
}

// CompareAndSetActive writes next only while active_sold still equals expected.
func (r *mongoTierRepository) CompareAndSetActive(ctx context.Context, tier model.Tier, expected, next int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": tier, "active_sold": expected}
	update := bson.M{
		"$set": bson.M{
			"active_sold": next,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update tier %s: %w", tier, err)
	}
	if result.MatchedCount == 0 {
		return capacityerrors.ErrConcurrentUpdate
	}
	return nil
}

func (r *mongoTierRepository) SetSalesEnabled(ctx context.Context, tier model.Tier, enabled bool, actor string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"sales_enabled": enabled,
			"updated_by":    actor,
			"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": tier}, update)
	if err != nil {
		return fmt.Errorf("failed to toggle sales for tier %s: %w", tier, err)
	}
	if result.MatchedCount == 0 {
		return capacityerrors.ErrTierNotFound
	}
	return nil
}

// Upsert replaces a whole ledger row. Used by seeding and operators, never by the sale path.
func (r *mongoTierRepository) Upsert(ctx context.Context, count *model.TierCount) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	count.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": count.Tier}, count, opts); err != nil {
		return fmt.Errorf("failed to upsert tier %s: %w", count.Tier, err)
	}
	return nil
}

func (r *mongoTierRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
