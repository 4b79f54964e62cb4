package service

import (
	"context"
	"strings"
	"testing"
	"time"

	dispatcherrors "hearth/internal/dispatch/errors"
	apperrors "hearth/pkg/errors"
	"hearth/pkg/model"
)

func eligibleProvider() *model.ServiceProvider {
	return &model.ServiceProvider{
		ID:       testProviderID,
		Name:     "Avi's Plumbing",
		Services: []string{"Plumbing", "Heating"},
		Status:   model.ProviderActive,
	}
}

func newTestNegotiationService(
	repo *mockBookingRepository,
	providers *mockProviderRepository,
	syncSvc *mockSyncService,
	events *mockEventPublisher,
) NegotiationService {
	return NewNegotiationService(repo, providers, &mockLockRepository{}, syncSvc, events, testConfig())
}

func TestProposeAmount_FirstProposal(t *testing.T) {
	booking := pendingBooking()
	var replaced *model.Booking

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
		replaceFunc: func(ctx context.Context, b *model.Booking) error {
			replaced = b
			return nil
		},
	}
	providers := &mockProviderRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceProvider, error) {
			return eligibleProvider(), nil
		},
	}
	syncSvc := &mockSyncService{}
	events := &mockEventPublisher{}

	svc := newTestNegotiationService(repo, providers, syncSvc, events)

	offer, err := svc.ProposeAmount(context.Background(), testBookingID, testProviderID, "150.50", "includes parts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if offer.ProposedAmount != 150.50 {
		t.Errorf("expected 150.50, got %v", offer.ProposedAmount)
	}
	if offer.Status != model.NegotiationPending {
		t.Errorf("expected pending, got %s", offer.Status)
	}
	if offer.ProviderName != "Avi's Plumbing" {
		t.Errorf("expected provider name snapshot, got %q", offer.ProviderName)
	}
	if offer.Note != "includes parts" {
		t.Errorf("expected note carried on the snapshot, got %q", offer.Note)
	}
	if offer.CreatedAt.IsZero() {
		t.Error("expected snapshot timestamp to be set")
	}

	if booking.Status != model.BookingNegotiating {
		t.Errorf("expected negotiating, got %s", booking.Status)
	}
	neg := booking.Negotiation
	if neg == nil {
		t.Fatal("expected negotiation to be created")
	}
	if !neg.IsActive {
		t.Error("expected negotiation active")
	}
	if len(neg.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(neg.History))
	}
	if replaced == nil {
		t.Error("expected booking to be persisted")
	}
	if len(events.events) != 1 || events.events[0].eventType != "booking.negotiation.proposed" {
		t.Errorf("expected proposal event, got %+v", events.events)
	}
	if len(syncSvc.calls) != 1 || syncSvc.calls[0].Negotiation == nil {
		t.Fatalf("expected resident request mirror sync, got %+v", syncSvc.calls)
	}
	if syncSvc.calls[0].Status != "" {
		t.Errorf("proposal sync must not touch request status, got %q", syncSvc.calls[0].Status)
	}
}

func TestProposeAmount_HistoryGrowsAndMirrorsLiveFields(t *testing.T) {
	booking := pendingBooking()

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceProvider, error) {
			return eligibleProvider(), nil
		},
	}

	svc := newTestNegotiationService(repo, providers, &mockSyncService{}, &mockEventPublisher{})

	amounts := []string{"100", "120", "110.25"}
	var offer *model.NegotiationOffer
	var err error
	for _, amount := range amounts {
		offer, err = svc.ProposeAmount(context.Background(), testBookingID, testProviderID, amount, "")
		if err != nil {
			t.Fatalf("proposal %s failed: %v", amount, err)
		}
	}

	neg := booking.Negotiation
	if len(neg.History) != len(amounts) {
		t.Fatalf("expected %d history entries, got %d", len(amounts), len(neg.History))
	}
	if neg.History[0].ProposedAmount != 100 || neg.History[1].ProposedAmount != 120 {
		t.Errorf("expected earlier offers preserved verbatim, got %+v", neg.History)
	}

	last := neg.History[len(neg.History)-1]
	if *offer != last {
		t.Errorf("returned snapshot must equal the last history entry: got=%+v last=%+v", offer, last)
	}
	if neg.ProposedAmount != last.ProposedAmount ||
		neg.ProviderID != last.ProviderID ||
		neg.Status != last.Status ||
		!neg.CreatedAt.Equal(last.CreatedAt) {
		t.Errorf("live fields must mirror the last history entry: live=%+v last=%+v", neg, last)
	}
}

func TestProposeAmount_TerminalBookingRejected(t *testing.T) {
	booking := pendingBooking()
	booking.Status = model.BookingAccepted
	booking.Negotiation = &model.Negotiation{
		IsActive:       false,
		ProposedAmount: 90,
		Status:         model.NegotiationAccepted,
	}

	replaceCalled := false
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
		replaceFunc: func(ctx context.Context, b *model.Booking) error {
			replaceCalled = true
			return nil
		},
	}
	providers := &mockProviderRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceProvider, error) {
			return eligibleProvider(), nil
		},
	}

	svc := newTestNegotiationService(repo, providers, &mockSyncService{}, &mockEventPublisher{})

	_, err := svc.ProposeAmount(context.Background(), testBookingID, testProviderID, "200", "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeInvalidState {
		t.Fatalf("expected InvalidState, got %v", err)
	}
	if replaceCalled {
		t.Error("expected no write for an accepted booking")
	}
	if booking.Negotiation.ProposedAmount != 90 || booking.Negotiation.Status != model.NegotiationAccepted {
		t.Errorf("negotiation must stay unchanged, got %+v", booking.Negotiation)
	}
}

func TestProposeAmount_InvalidAmounts(t *testing.T) {
	svc := newTestNegotiationService(&mockBookingRepository{}, &mockProviderRepository{}, &mockSyncService{}, &mockEventPublisher{})

	for _, amount := range []string{"", "abc", "-5", "0"} {
		t.Run("amount="+amount, func(t *testing.T) {
			_, err := svc.ProposeAmount(context.Background(), testBookingID, testProviderID, amount, "")
			appErr := apperrors.AsAppError(err)
			if err == nil || appErr.Code != apperrors.CodeInvalidArgument {
				t.Fatalf("expected InvalidArgument for %q, got %v", amount, err)
			}
		})
	}
}

func TestProposeAmount_ProviderDoesNotOfferService(t *testing.T) {
	booking := pendingBooking()
	booking.ServiceName = "Cooking"

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceProvider, error) {
			return eligibleProvider(), nil
		},
	}

	svc := newTestNegotiationService(repo, providers, &mockSyncService{}, &mockEventPublisher{})

	_, err := svc.ProposeAmount(context.Background(), testBookingID, testProviderID, "80", "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeInvalidArgument {
		t.Fatalf("expected InvalidArgument for service mismatch, got %v", err)
	}
}

func TestProposeAmount_ProviderNotFound(t *testing.T) {
	booking := pendingBooking()

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceProvider, error) {
			return nil, dispatcherrors.ErrProviderNotFound
		},
	}

	svc := newTestNegotiationService(repo, providers, &mockSyncService{}, &mockEventPublisher{})

	_, err := svc.ProposeAmount(context.Background(), testBookingID, testProviderID, "80", "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestProposeAmount_NoteTruncated(t *testing.T) {
	booking := pendingBooking()

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceProvider, error) {
			return eligibleProvider(), nil
		},
	}

	svc := newTestNegotiationService(repo, providers, &mockSyncService{}, &mockEventPublisher{})

	longNote := strings.Repeat("x", 500)
	offer, err := svc.ProposeAmount(context.Background(), testBookingID, testProviderID, "80", longNote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len([]rune(offer.Note)); got != model.MaxNegotiationNoteLen {
		t.Errorf("expected note truncated to %d runes, got %d", model.MaxNegotiationNoteLen, got)
	}
	if booking.Negotiation.Note != offer.Note {
		t.Error("live negotiation must carry the truncated note")
	}
}

func TestProposeAmount_NegotiatingStatusPreserved(t *testing.T) {
	booking := pendingBooking()
	booking.Status = model.BookingNegotiating
	booking.Negotiation = &model.Negotiation{
		IsActive:       true,
		ProposedAmount: 100,
		ProviderID:     testProviderID,
		Status:         model.NegotiationPending,
		CreatedAt:      time.Now().Add(-time.Minute),
		History: []model.NegotiationOffer{
			{ProposedAmount: 100, ProviderID: testProviderID, Status: model.NegotiationPending},
		},
	}

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ServiceProvider, error) {
			return eligibleProvider(), nil
		},
	}

	svc := newTestNegotiationService(repo, providers, &mockSyncService{}, &mockEventPublisher{})

	offer, err := svc.ProposeAmount(context.Background(), testBookingID, testProviderID, "95", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if offer.ProposedAmount != 95 {
		t.Errorf("expected snapshot for the new offer, got %+v", offer)
	}
	if booking.Status != model.BookingNegotiating {
		t.Errorf("expected status to stay negotiating, got %s", booking.Status)
	}
	if len(booking.Negotiation.History) != 2 {
		t.Errorf("expected appended history, got %d entries", len(booking.Negotiation.History))
	}
}
