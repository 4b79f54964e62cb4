package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	dispatcherrors "hearth/internal/dispatch/errors"
	"hearth/pkg/config"
	"hearth/pkg/model"
)

const (
	ProviderCollection = "Providers"
)

// ProviderRepository is the dispatch engine's read-only view of the provider
// directory. Account mutation lives in the provider-facing subsystem.
//
// Eligibility is a live predicate: callers re-query on every decision rather
// than snapshotting an offer roster, so a provider deactivating mid-flow
// shrinks the denominator of the cascade check.
type ProviderRepository interface {
	FindByID(ctx context.Context, id string) (*model.ServiceProvider, error)
	FindEligible(ctx context.Context, serviceName string) ([]*model.ServiceProvider, error)
	CountEligible(ctx context.Context, serviceName string) (int64, error)
}

type mongoProviderRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoProviderRepository(cfg *config.Config) ProviderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderRepository{
		cfg:        cfg,
		collection: db.Collection(ProviderCollection),
	}
}

func (r *mongoProviderRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoProviderRepository) FindByID(ctx context.Context, id string) (*model.ServiceProvider, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dispatcherrors.ErrInvalidID, id)
	}

	var provider model.ServiceProvider
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&provider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dispatcherrors.ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}

	return &provider, nil
}

func (r *mongoProviderRepository) FindEligible(ctx context.Context, serviceName string) ([]*model.ServiceProvider, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, eligibleFilter(serviceName), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find eligible providers: %w", err)
	}
	defer cursor.Close(ctx)

	var providers []*model.ServiceProvider
	if err = cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}

	return providers, nil
}

func (r *mongoProviderRepository) CountEligible(ctx context.Context, serviceName string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, eligibleFilter(serviceName))
	if err != nil {
		return 0, fmt.Errorf("failed to count eligible providers: %w", err)
	}

	return count, nil
}

func eligibleFilter(serviceName string) bson.M {
	return bson.M{
		"status":   model.ProviderActive,
		"services": serviceName,
	}
}
