package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	dispatcherrors "hearth/internal/dispatch/errors"
	"hearth/internal/dispatch/repository"
	"hearth/pkg/config"
	apperrors "hearth/pkg/errors"
	"hearth/pkg/kafka"
	"hearth/pkg/model"
	"hearth/pkg/sanitizer"
)

// NegotiationService handles provider counter-offers on a booking's price.
// Every proposal lands in the append-only history and overwrites the live
// negotiation sub-record in the same transaction. The caller gets back the
// new offer snapshot, not the booking it was recorded on.
type NegotiationService interface {
	ProposeAmount(ctx context.Context, bookingID, providerID, amount, note string) (*model.NegotiationOffer, error)
}

type negotiationService struct {
	repo         repository.BookingRepository
	providerRepo repository.ProviderRepository
	lockRepo     repository.DispatchLockRepository
	sync         SyncService
	events       EventPublisher
	cfg          *config.Config
}

func NewNegotiationService(
	repo repository.BookingRepository,
	providerRepo repository.ProviderRepository,
	lockRepo repository.DispatchLockRepository,
	syncService SyncService,
	events EventPublisher,
	cfg *config.Config,
) NegotiationService {
	return &negotiationService{
		repo:         repo,
		providerRepo: providerRepo,
		lockRepo:     lockRepo,
		sync:         syncService,
		events:       events,
		cfg:          cfg,
	}
}

func (s *negotiationService) ProposeAmount(ctx context.Context, bookingID, providerID, amount, note string) (*model.NegotiationOffer, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidArgument("Booking ID cannot be empty")
	}
	if providerID == "" {
		return nil, apperrors.InvalidArgument("Provider ID cannot be empty")
	}

	proposed, err := parseProposedAmount(amount)
	if err != nil {
		return nil, err
	}

	note = sanitizer.TruncateNote(sanitizer.TrimAndNormalize(note), model.MaxNegotiationNoteLen)

	lockID, err := acquireBookingLock(ctx, s.lockRepo, s.cfg.DispatchLockTTL, bookingID)
	if err != nil {
		return nil, err
	}
	defer releaseBookingLock(ctx, s.lockRepo, s.cfg.Log, lockID)

	var booking *model.Booking

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var txErr error
		booking, txErr = loadBooking(sessCtx, s.repo, bookingID)
		if txErr != nil {
			return txErr
		}

		if booking.IsTerminal() {
			return apperrors.InvalidState("negotiation is not allowed for this booking state")
		}

		provider, txErr := s.providerRepo.FindByID(sessCtx, providerID)
		if txErr != nil {
			if errors.Is(txErr, dispatcherrors.ErrProviderNotFound) {
				return apperrors.NotFoundWithID("Provider", providerID)
			}
			if errors.Is(txErr, dispatcherrors.ErrInvalidID) {
				return apperrors.InvalidArgument("Invalid provider ID format")
			}
			return storeError("Failed to retrieve provider", txErr)
		}

		if !provider.Offers(booking.ServiceName) {
			return apperrors.InvalidArgument("Provider does not offer this service")
		}

		applyProposal(booking, provider, proposed, note)

		if txErr = s.repo.Replace(sessCtx, booking); txErr != nil {
			return replaceError(bookingID, txErr)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to record negotiation proposal",
			"booking_id", bookingID,
			"provider_id", providerID,
			"error", err,
		)
		return nil, toAppError(err)
	}

	s.cfg.Log.Info("Negotiation proposal recorded",
		"booking_id", bookingID,
		"provider_id", providerID,
		"proposed_amount", proposed,
		"history_len", len(booking.Negotiation.History),
	)

	publishEvent(ctx, s.events, s.cfg.Log, kafka.EventNegotiationProposed, bookingID, NegotiationProposedEvent{
		BookingID:      bookingID,
		ProviderID:     providerID,
		ProposedAmount: proposed,
	})

	if booking.ResidentRequestID != "" {
		s.syncProposal(ctx, booking)
	}

	snapshot := booking.Negotiation.History[len(booking.Negotiation.History)-1]
	return &snapshot, nil
}

// applyProposal appends the offer to the history and overwrites the live
// sub-record with the same values. The history keeps every prior offer
// verbatim; only the live fields move.
func applyProposal(booking *model.Booking, provider *model.ServiceProvider, proposed float64, note string) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	offer := model.NegotiationOffer{
		ProposedAmount: proposed,
		ProviderID:     provider.ID,
		ProviderName:   provider.Name,
		Note:           note,
		Status:         model.NegotiationPending,
		CreatedAt:      now,
	}

	if booking.Negotiation == nil {
		booking.Negotiation = &model.Negotiation{}
	}
	booking.Negotiation.History = append(booking.Negotiation.History, offer)
	booking.Negotiation.IsActive = true
	booking.Negotiation.ProposedAmount = proposed
	booking.Negotiation.ProviderID = provider.ID
	booking.Negotiation.ProviderName = provider.Name
	booking.Negotiation.Note = note
	booking.Negotiation.Status = model.NegotiationPending
	booking.Negotiation.CreatedAt = now
	booking.Negotiation.RespondedAt = nil

	if booking.Status == model.BookingPending || booking.Status == model.BookingOffered {
		booking.Status = model.BookingNegotiating
	}
}

// parseProposedAmount accepts the amount as it arrives on the wire. Anything
// that is not a strictly positive number is rejected before any storage work.
func parseProposedAmount(amount string) (float64, error) {
	if amount == "" {
		return 0, apperrors.InvalidArgument("Proposed amount cannot be empty")
	}
	proposed, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, apperrors.InvalidArgument("Proposed amount must be a number")
	}
	if proposed <= 0 {
		return 0, apperrors.InvalidArgument("Proposed amount must be greater than zero")
	}
	return proposed, nil
}

// syncProposal mirrors the live negotiation onto the resident request so
// the resident-facing side sees the latest offer without the history.
func (s *negotiationService) syncProposal(ctx context.Context, booking *model.Booking) {
	update := &model.ResidentRequestUpdate{
		Negotiation: mirrorNegotiation(booking.Negotiation),
	}

	if err := s.sync.SyncFromBooking(ctx, booking.ResidentRequestID, update); err != nil {
		s.cfg.Log.Warn("Failed to sync resident request after negotiation proposal",
			"booking_id", booking.ID,
			"resident_request_id", booking.ResidentRequestID,
			"error", err,
		)
	}
}
