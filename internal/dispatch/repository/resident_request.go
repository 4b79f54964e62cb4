package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	dispatcherrors "hearth/internal/dispatch/errors"
	"hearth/pkg/config"
	"hearth/pkg/model"
)

const (
	ResidentRequestCollection = "Resident_requests"
)

// ResidentRequestRepository is the synchronizer's write path into the
// homeowner-facing aggregate. Only partial updates by id; the dispatch
// engine never owns or creates these records.
type ResidentRequestRepository interface {
	UpdateByID(ctx context.Context, id string, update *model.ResidentRequestUpdate) (*model.ResidentRequest, error)
}

type mongoResidentRequestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoResidentRequestRepository(cfg *config.Config) ResidentRequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResidentRequestRepository{
		cfg:        cfg,
		collection: db.Collection(ResidentRequestCollection),
	}
}

func (r *mongoResidentRequestRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoResidentRequestRepository) UpdateByID(ctx context.Context, id string, update *model.ResidentRequestUpdate) (*model.ResidentRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dispatcherrors.ErrInvalidID, id)
	}

	fields := bson.M{
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if update.Status != "" {
		fields["status"] = update.Status
	}
	if update.Negotiation != nil {
		fields["negotiation"] = update.Negotiation
	}

	result := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": fields},
	)

	var request model.ResidentRequest
	if err := result.Decode(&request); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, dispatcherrors.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to update resident request: %w", err)
	}

	return &request, nil
}
