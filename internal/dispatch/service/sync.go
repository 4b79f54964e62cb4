package service

import (
	"context"
	"errors"

	dispatcherrors "hearth/internal/dispatch/errors"
	"hearth/internal/dispatch/repository"
	"hearth/pkg/config"
	apperrors "hearth/pkg/errors"
	"hearth/pkg/model"
)

// SyncService propagates a booking's outcome onto the linked resident
// request. Pure propagation: it derives nothing, it only applies the partial
// update it is handed. Failures here must never unwind a booking transition
// that already committed, so callers log and swallow the returned error.
type SyncService interface {
	SyncFromBooking(ctx context.Context, residentRequestID string, update *model.ResidentRequestUpdate) error
}

type syncService struct {
	requestRepo repository.ResidentRequestRepository
	cfg         *config.Config
}

func NewSyncService(requestRepo repository.ResidentRequestRepository, cfg *config.Config) SyncService {
	return &syncService{
		requestRepo: requestRepo,
		cfg:         cfg,
	}
}

func (s *syncService) SyncFromBooking(ctx context.Context, residentRequestID string, update *model.ResidentRequestUpdate) error {
	if residentRequestID == "" {
		// Callers check presence before invoking; an empty id is a no-op,
		// not an error.
		return nil
	}
	if update == nil || (update.Status == "" && update.Negotiation == nil) {
		return nil
	}

	_, err := s.requestRepo.UpdateByID(ctx, residentRequestID, update)
	if err != nil {
		if errors.Is(err, dispatcherrors.ErrRequestNotFound) || errors.Is(err, dispatcherrors.ErrInvalidID) {
			s.cfg.Log.Warn("Linked resident request missing during sync",
				"resident_request_id", residentRequestID,
				"error", err,
			)
			return apperrors.NotFoundWithID("Resident request", residentRequestID)
		}
		return storeError("Failed to sync resident request", err)
	}

	s.cfg.Log.Info("Resident request synced from booking",
		"resident_request_id", residentRequestID,
		"status", update.Status,
	)
	return nil
}
