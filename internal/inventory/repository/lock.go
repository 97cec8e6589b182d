package repository

import (
	"context"
	"fmt"
	"time"

	inventoryerrors "weekchain/internal/inventory/errors"
	"weekchain/pkg/config"
	"weekchain/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	LocksCollection = "Reservation_locks"
)

// LockRepository provides operations for advisory locks
type LockRepository interface {
	Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	Delete(ctx context.Context, lockID, owner string) error
	DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error)
}

type mongoLockRepository struct {
	collection *mongo.Collection
}

func NewLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		collection: db.Collection(LocksCollection),
	}
}

// Create returns ErrDuplicate when the lock is already held.
func (r *mongoLockRepository) Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	lock.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("lock %s: %w", lock.ID, inventoryerrors.ErrDuplicate)
		}
		return nil, err
	}

	return lock, nil
}

// Delete removes the lock only if owner still holds it; an expired lock taken over by
// another request is left alone.
func (r *mongoLockRepository) Delete(ctx context.Context, lockID, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner})
	return err
}

// DeleteExpired clears a lock whose TTL passed but which the TTL monitor has not reaped yet.
func (r *mongoLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
