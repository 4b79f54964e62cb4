package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	dispatcherrors "hearth/internal/dispatch/errors"
	"hearth/internal/dispatch/repository"
	apperrors "hearth/pkg/errors"
	"hearth/pkg/logger"
	"hearth/pkg/model"
)

// loadBooking translates repository errors into the API error taxonomy.
func loadBooking(ctx context.Context, repo repository.BookingRepository, id string) (*model.Booking, error) {
	booking, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dispatcherrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, dispatcherrors.ErrInvalidID) {
			return nil, apperrors.InvalidArgument("Invalid booking ID format")
		}
		return nil, storeError("Failed to retrieve booking", err)
	}
	return booking, nil
}

func replaceError(bookingID string, err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperrors.Conflict("Booking was modified concurrently, please retry")
	}
	if errors.Is(err, dispatcherrors.ErrBookingNotFound) {
		return apperrors.NotFoundWithID("Booking", bookingID)
	}
	return storeError("Failed to persist booking", err)
}

// acquireBookingLock serializes writers on a single booking. The lock
// document expires on its own if a crashed process never releases it.
func acquireBookingLock(ctx context.Context, lockRepo repository.DispatchLockRepository, ttl time.Duration, bookingID string) (string, error) {
	lockID := "dispatch_lock_" + bookingID

	lock := &model.DispatchLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(ttl),
	}

	if _, err := lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another response for this booking is being processed. Please try again.")
		}
		return "", storeError("Failed to acquire dispatch lock", err)
	}

	return lockID, nil
}

func releaseBookingLock(ctx context.Context, lockRepo repository.DispatchLockRepository, log *logger.Logger, lockID string) {
	if err := lockRepo.Delete(ctx, lockID); err != nil {
		log.Warn("Failed to release dispatch lock", "lock_id", lockID, "error", err)
	}
}

// publishEvent is fire-and-forget: the state change already committed, so a
// broker failure only gets logged.
func publishEvent(ctx context.Context, events EventPublisher, log *logger.Logger, eventType, bookingID string, payload any) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, eventType, bookingID, payload); err != nil {
		log.Warn("Failed to publish dispatch event",
			"event_type", eventType,
			"booking_id", bookingID,
			"error", err,
		)
	}
}

// mirrorNegotiation builds the history-free view stored on the resident
// request. The mirror carries its own timestamp, distinct from the
// booking-side timestamps.
func mirrorNegotiation(n *model.Negotiation) *model.RequestNegotiation {
	return &model.RequestNegotiation{
		IsActive:       n.IsActive,
		ProposedAmount: n.ProposedAmount,
		ProviderID:     n.ProviderID,
		ProviderName:   n.ProviderName,
		Note:           n.Note,
		Status:         n.Status,
		RespondedAt:    n.RespondedAt,
		UpdatedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
}

func toAppError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Internal("An unexpected error occurred", err)
}
