package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"hearth/pkg/config"
	"hearth/pkg/model"
)

const (
	DispatchLockCollection = "Dispatch_locks"
)

// DispatchLockRepository provides per-booking advisory locks. The unique _id
// makes Create fail with a duplicate key error while a lock is held.
type DispatchLockRepository interface {
	Create(ctx context.Context, lock *model.DispatchLock) (*model.DispatchLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoDispatchLockRepository struct {
	collection *mongo.Collection
}

func NewDispatchLockRepository(cfg *config.Config) DispatchLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDispatchLockRepository{
		collection: db.Collection(DispatchLockCollection),
	}
}

func (r *mongoDispatchLockRepository) Create(ctx context.Context, lock *model.DispatchLock) (*model.DispatchLock, error) {
	lock.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		return nil, err
	}

	return lock, nil
}

func (r *mongoDispatchLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
