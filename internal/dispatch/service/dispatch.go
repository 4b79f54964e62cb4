package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"hearth/internal/dispatch/repository"
	"hearth/pkg/config"
	apperrors "hearth/pkg/errors"
	"hearth/pkg/kafka"
	"hearth/pkg/model"
	"hearth/pkg/sanitizer"
)

// DispatchService records provider responses against a booking and owns the
// cascade-rejection decision: once the rejected-entry count reaches the
// number of currently eligible providers, the booking transitions to
// rejected and the linked resident request is marked denied.
type DispatchService interface {
	RecordProviderRejection(ctx context.Context, bookingID, providerID, reason string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
}

type dispatchService struct {
	repo         repository.BookingRepository
	providerRepo repository.ProviderRepository
	lockRepo     repository.DispatchLockRepository
	sync         SyncService
	events       EventPublisher
	cfg          *config.Config
}

func NewDispatchService(
	repo repository.BookingRepository,
	providerRepo repository.ProviderRepository,
	lockRepo repository.DispatchLockRepository,
	syncService SyncService,
	events EventPublisher,
	cfg *config.Config,
) DispatchService {
	return &dispatchService{
		repo:         repo,
		providerRepo: providerRepo,
		lockRepo:     lockRepo,
		sync:         syncService,
		events:       events,
		cfg:          cfg,
	}
}

func (s *dispatchService) RecordProviderRejection(ctx context.Context, bookingID, providerID, reason string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidArgument("Booking ID cannot be empty")
	}
	if providerID == "" {
		return nil, apperrors.InvalidArgument("Provider ID cannot be empty")
	}

	reason = sanitizer.TrimAndNormalize(reason)
	if reason == "" {
		reason = model.DefaultRejectionReason
	}

	// Serialize concurrent responses per booking: two near-simultaneous
	// rejections must not both observe the pre-cascade count.
	lockID, err := acquireBookingLock(ctx, s.lockRepo, s.cfg.DispatchLockTTL, bookingID)
	if err != nil {
		return nil, err
	}
	defer releaseBookingLock(ctx, s.lockRepo, s.cfg.Log, lockID)

	var booking *model.Booking
	var cascaded bool
	var eligibleCount int64

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var txErr error
		booking, txErr = loadBooking(sessCtx, s.repo, bookingID)
		if txErr != nil {
			return txErr
		}

		if booking.IsTerminal() {
			return apperrors.InvalidState("provider responses are not accepted for this booking state")
		}

		booking.ProviderResponses = append(booking.ProviderResponses, model.ProviderResponse{
			ProviderID:      providerID,
			Response:        model.ResponseRejected,
			RespondedAt:     time.Now().UTC().Truncate(time.Millisecond),
			RejectionReason: reason,
		})

		// Eligibility is a live predicate, re-queried in the same
		// transaction as the append. A provider deactivating mid-flow
		// shrinks the denominator and can fire the cascade early.
		eligibleCount, txErr = s.providerRepo.CountEligible(sessCtx, booking.ServiceName)
		if txErr != nil {
			return storeError("Failed to count eligible providers", txErr)
		}

		cascaded = int64(booking.RejectedCount()) >= eligibleCount
		if cascaded {
			booking.Status = model.BookingRejected
			declineActiveNegotiation(booking)
		}

		if txErr = s.repo.Replace(sessCtx, booking); txErr != nil {
			return replaceError(bookingID, txErr)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to record provider rejection",
			"booking_id", bookingID,
			"provider_id", providerID,
			"error", err,
		)
		return nil, toAppError(err)
	}

	s.cfg.Log.Info("Provider rejection recorded",
		"booking_id", bookingID,
		"provider_id", providerID,
		"rejected_count", booking.RejectedCount(),
		"eligible_count", eligibleCount,
		"cascaded", cascaded,
	)

	publishEvent(ctx, s.events, s.cfg.Log, kafka.EventRejectionRecorded, bookingID, RejectionRecordedEvent{
		BookingID:     bookingID,
		ProviderID:    providerID,
		Reason:        reason,
		Status:        booking.Status,
		RejectedCount: booking.RejectedCount(),
		EligibleCount: eligibleCount,
	})

	if cascaded {
		s.cfg.Log.Warn("All eligible providers rejected booking",
			"booking_id", bookingID,
			"service_name", booking.ServiceName,
			"eligible_count", eligibleCount,
		)

		publishEvent(ctx, s.events, s.cfg.Log, kafka.EventCascadeRejected, bookingID, CascadeRejectedEvent{
			BookingID:         bookingID,
			ServiceName:       booking.ServiceName,
			ResidentRequestID: booking.ResidentRequestID,
		})

		if booking.ResidentRequestID != "" {
			s.syncDenied(ctx, booking)
		}
	}

	return booking, nil
}

func (s *dispatchService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("Booking ID cannot be empty")
	}

	booking, err := loadBooking(ctx, s.repo, id)
	if err != nil {
		return nil, toAppError(err)
	}
	return booking, nil
}

func (s *dispatchService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = storeError("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = storeError("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// syncDenied mirrors the cascade outcome onto the resident request. The
// booking transition has already committed; sync failures are warnings.
func (s *dispatchService) syncDenied(ctx context.Context, booking *model.Booking) {
	update := &model.ResidentRequestUpdate{
		Status: model.RequestDenied,
	}
	if booking.Negotiation != nil {
		update.Negotiation = mirrorNegotiation(booking.Negotiation)
	}

	if err := s.sync.SyncFromBooking(ctx, booking.ResidentRequestID, update); err != nil {
		s.cfg.Log.Warn("Failed to sync resident request after cascade rejection",
			"booking_id", booking.ID,
			"resident_request_id", booking.ResidentRequestID,
			"error", err,
		)
	}
}

// declineActiveNegotiation forces an active negotiation closed when the
// booking cascades to rejected. History entries stay untouched; only the
// live fields change.
func declineActiveNegotiation(b *model.Booking) {
	if b.Negotiation == nil || !b.Negotiation.IsActive {
		return
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	b.Negotiation.IsActive = false
	b.Negotiation.Status = model.NegotiationDeclined
	b.Negotiation.RespondedAt = &now
}
