package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	dispatcherrors "hearth/internal/dispatch/errors"
	"hearth/internal/dispatch/repository"
	"hearth/pkg/config"
	mongotx "hearth/pkg/db/mongo"
	apperrors "hearth/pkg/errors"
	"hearth/pkg/logger"
	"hearth/pkg/model"
)

// Mock repositories for testing

type mockBookingRepository struct {
	createFunc   func(ctx context.Context, booking *model.Booking) error
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	countFunc    func(ctx context.Context) (int64, error)
	replaceFunc  func(ctx context.Context, booking *model.Booking) error
	txFunc       func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, dispatcherrors.ErrBookingNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepository) Replace(ctx context.Context, booking *model.Booking) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.txFunc != nil {
		return m.txFunc(ctx, fn)
	}
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockProviderRepository struct {
	findByIDFunc      func(ctx context.Context, id string) (*model.ServiceProvider, error)
	findEligibleFunc  func(ctx context.Context, serviceName string) ([]*model.ServiceProvider, error)
	countEligibleFunc func(ctx context.Context, serviceName string) (int64, error)
}

func (m *mockProviderRepository) FindByID(ctx context.Context, id string) (*model.ServiceProvider, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, dispatcherrors.ErrProviderNotFound
}

func (m *mockProviderRepository) FindEligible(ctx context.Context, serviceName string) ([]*model.ServiceProvider, error) {
	if m.findEligibleFunc != nil {
		return m.findEligibleFunc(ctx, serviceName)
	}
	return []*model.ServiceProvider{}, nil
}

func (m *mockProviderRepository) CountEligible(ctx context.Context, serviceName string) (int64, error) {
	if m.countEligibleFunc != nil {
		return m.countEligibleFunc(ctx, serviceName)
	}
	return 0, nil
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.DispatchLock) (*model.DispatchLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.DispatchLock) (*model.DispatchLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockSyncService struct {
	syncFunc func(ctx context.Context, residentRequestID string, update *model.ResidentRequestUpdate) error
	calls    []*model.ResidentRequestUpdate
}

func (m *mockSyncService) SyncFromBooking(ctx context.Context, residentRequestID string, update *model.ResidentRequestUpdate) error {
	m.calls = append(m.calls, update)
	if m.syncFunc != nil {
		return m.syncFunc(ctx, residentRequestID, update)
	}
	return nil
}

type publishedEvent struct {
	eventType string
	key       string
	payload   any
}

type mockEventPublisher struct {
	publishFunc func(ctx context.Context, eventType, key string, payload any) error
	events      []publishedEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	m.events = append(m.events, publishedEvent{eventType: eventType, key: key, payload: payload})
	if m.publishFunc != nil {
		return m.publishFunc(ctx, eventType, key, payload)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		DispatchLockTTL: 10 * time.Second,
	}
}

const (
	testBookingID  = "650000000000000000000001"
	testProviderID = "650000000000000000000002"
	testRequestID  = "650000000000000000000003"
)

func pendingBooking() *model.Booking {
	return &model.Booking{
		ID:                testBookingID,
		ServiceName:       "Plumbing",
		CustomerName:      "Dana Levi",
		Address:           "12 Herzl St",
		Status:            model.BookingPending,
		ResidentRequestID: testRequestID,
		Version:           1,
	}
}

func newTestDispatchService(
	repo *mockBookingRepository,
	providers *mockProviderRepository,
	locks *mockLockRepository,
	syncSvc *mockSyncService,
	events *mockEventPublisher,
) DispatchService {
	return NewDispatchService(repo, providers, locks, syncSvc, events, testConfig())
}

func TestRecordProviderRejection_NoCascadeWhileProvidersRemain(t *testing.T) {
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
		countEligibleFunc: func(ctx context.Context, serviceName string) (int64, error) {
			return 2, nil
		},
	}
	syncSvc := &mockSyncService{}
	events := &mockEventPublisher{}

	svc := newTestDispatchService(repo, providers, &mockLockRepository{}, syncSvc, events)

	result, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "too far away")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != model.BookingPending {
		t.Errorf("expected status to stay pending, got %s", result.Status)
	}
	if len(result.ProviderResponses) != 1 {
		t.Fatalf("expected 1 provider response, got %d", len(result.ProviderResponses))
	}
	entry := result.ProviderResponses[0]
	if entry.ProviderID != testProviderID || entry.Response != model.ResponseRejected {
		t.Errorf("unexpected response entry: %+v", entry)
	}
	if entry.RejectionReason != "too far away" {
		t.Errorf("expected reason to be stored, got %q", entry.RejectionReason)
	}
	if replaced == nil {
		t.Error("expected booking to be persisted")
	}
	if len(syncSvc.calls) != 0 {
		t.Errorf("expected no resident request sync without cascade, got %d calls", len(syncSvc.calls))
	}
	if len(events.events) != 1 || events.events[0].eventType != "booking.rejection.recorded" {
		t.Errorf("expected a single rejection event, got %+v", events.events)
	}
}

func TestRecordProviderRejection_CascadeWhenAllEligibleRejected(t *testing.T) {
	booking := pendingBooking()
	booking.ProviderResponses = []model.ProviderResponse{
		{ProviderID: "650000000000000000000009", Response: model.ResponseRejected, RespondedAt: time.Now()},
	}

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		countEligibleFunc: func(ctx context.Context, serviceName string) (int64, error) {
			return 2, nil
		},
	}
	syncSvc := &mockSyncService{}
	events := &mockEventPublisher{}

	svc := newTestDispatchService(repo, providers, &mockLockRepository{}, syncSvc, events)

	result, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != model.BookingRejected {
		t.Errorf("expected cascade to rejected, got %s", result.Status)
	}
	if result.ProviderResponses[1].RejectionReason != model.DefaultRejectionReason {
		t.Errorf("expected default reason, got %q", result.ProviderResponses[1].RejectionReason)
	}

	if len(syncSvc.calls) != 1 {
		t.Fatalf("expected 1 resident request sync, got %d", len(syncSvc.calls))
	}
	if syncSvc.calls[0].Status != model.RequestDenied {
		t.Errorf("expected resident request denied, got %q", syncSvc.calls[0].Status)
	}

	if len(events.events) != 2 {
		t.Fatalf("expected rejection + cascade events, got %d", len(events.events))
	}
	if events.events[1].eventType != "booking.cascade.rejected" {
		t.Errorf("expected cascade event, got %s", events.events[1].eventType)
	}
}

func TestRecordProviderRejection_DuplicateRejectionsCountRaw(t *testing.T) {
	// The same provider rejecting twice produces two entries, both counted
	// against the eligible total.
	booking := pendingBooking()
	booking.ProviderResponses = []model.ProviderResponse{
		{ProviderID: testProviderID, Response: model.ResponseRejected, RespondedAt: time.Now()},
	}

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		countEligibleFunc: func(ctx context.Context, serviceName string) (int64, error) {
			return 2, nil
		},
	}

	svc := newTestDispatchService(repo, providers, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	result, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "changed my mind")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != model.BookingRejected {
		t.Errorf("expected cascade from duplicate rejections, got %s", result.Status)
	}
}

func TestRecordProviderRejection_EligibilityShrinksMidFlow(t *testing.T) {
	// One rejection on record, but only one provider is still eligible: the
	// fresh count fires the cascade early.
	booking := pendingBooking()

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		countEligibleFunc: func(ctx context.Context, serviceName string) (int64, error) {
			return 1, nil
		},
	}

	svc := newTestDispatchService(repo, providers, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	result, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.BookingRejected {
		t.Errorf("expected cascade with shrunken eligibility, got %s", result.Status)
	}
}

func TestRecordProviderRejection_TerminalBookingRejected(t *testing.T) {
	for _, status := range []string{model.BookingAccepted, model.BookingCompleted, model.BookingCancelled} {
		t.Run(status, func(t *testing.T) {
			booking := pendingBooking()
			booking.Status = status

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

			svc := newTestDispatchService(repo, &mockProviderRepository{}, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

			_, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
			appErr := apperrors.AsAppError(err)
			if err == nil || appErr.Code != apperrors.CodeInvalidState {
				t.Fatalf("expected InvalidState error, got %v", err)
			}
			if replaceCalled {
				t.Error("expected no write for a frozen booking")
			}
		})
	}
}

func TestRecordProviderRejection_CascadeDeclinesActiveNegotiation(t *testing.T) {
	createdAt := time.Now().Add(-time.Hour)
	booking := pendingBooking()
	booking.Status = model.BookingNegotiating
	booking.Negotiation = &model.Negotiation{
		IsActive:       true,
		ProposedAmount: 140,
		ProviderID:     testProviderID,
		Status:         model.NegotiationPending,
		CreatedAt:      createdAt,
		History: []model.NegotiationOffer{
			{ProposedAmount: 140, ProviderID: testProviderID, Status: model.NegotiationPending, CreatedAt: createdAt},
		},
	}

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		countEligibleFunc: func(ctx context.Context, serviceName string) (int64, error) {
			return 1, nil
		},
	}

	svc := newTestDispatchService(repo, providers, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	result, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	neg := result.Negotiation
	if neg.IsActive {
		t.Error("expected negotiation to be deactivated")
	}
	if neg.Status != model.NegotiationDeclined {
		t.Errorf("expected declined, got %s", neg.Status)
	}
	if neg.RespondedAt == nil {
		t.Error("expected responded_at to be stamped")
	}
	if len(neg.History) != 1 || neg.History[0].Status != model.NegotiationPending {
		t.Errorf("expected history untouched, got %+v", neg.History)
	}
}

func TestRecordProviderRejection_LockContention(t *testing.T) {
	locks := &mockLockRepository{
		createFunc: func(ctx context.Context, lock *model.DispatchLock) (*model.DispatchLock, error) {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}

	svc := newTestDispatchService(&mockBookingRepository{}, &mockProviderRepository{}, locks, &mockSyncService{}, &mockEventPublisher{})

	_, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected Conflict when lock is held, got %v", err)
	}
}

func TestRecordProviderRejection_BookingNotFound(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, dispatcherrors.ErrBookingNotFound
		},
	}

	svc := newTestDispatchService(repo, &mockProviderRepository{}, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	_, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestRecordProviderRejection_VersionConflict(t *testing.T) {
	booking := pendingBooking()
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
		replaceFunc: func(ctx context.Context, b *model.Booking) error {
			return repository.ErrVersionConflict
		},
	}
	providers := &mockProviderRepository{
		countEligibleFunc: func(ctx context.Context, serviceName string) (int64, error) {
			return 3, nil
		},
	}

	svc := newTestDispatchService(repo, providers, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	_, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected Conflict on version race, got %v", err)
	}
}

func TestRecordProviderRejection_SyncFailureDoesNotFailRequest(t *testing.T) {
	booking := pendingBooking()
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return booking, nil
		},
	}
	providers := &mockProviderRepository{
		countEligibleFunc: func(ctx context.Context, serviceName string) (int64, error) {
			return 1, nil
		},
	}
	syncSvc := &mockSyncService{
		syncFunc: func(ctx context.Context, residentRequestID string, update *model.ResidentRequestUpdate) error {
			return errors.New("request store is down")
		},
	}

	svc := newTestDispatchService(repo, providers, &mockLockRepository{}, syncSvc, &mockEventPublisher{})

	result, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	if err != nil {
		t.Fatalf("sync failure must not fail the rejection, got %v", err)
	}
	if result.Status != model.BookingRejected {
		t.Errorf("expected cascade to persist, got %s", result.Status)
	}
}

func TestRecordProviderRejection_StorageTimeout(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return nil, context.DeadlineExceeded
		},
	}

	svc := newTestDispatchService(repo, &mockProviderRepository{}, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	_, err := svc.RecordProviderRejection(context.Background(), testBookingID, testProviderID, "")
	appErr := apperrors.AsAppError(err)
	if err == nil || appErr.Code != apperrors.CodeUnavailable {
		t.Fatalf("expected Unavailable on timeout, got %v", err)
	}
	if appErr.HTTPStatus != 503 {
		t.Errorf("expected 503, got %d", appErr.HTTPStatus)
	}
}

func TestRecordProviderRejection_EmptyIDs(t *testing.T) {
	svc := newTestDispatchService(&mockBookingRepository{}, &mockProviderRepository{}, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	if _, err := svc.RecordProviderRejection(context.Background(), "", testProviderID, ""); err == nil {
		t.Error("expected error for empty booking ID")
	}
	if _, err := svc.RecordProviderRejection(context.Background(), testBookingID, "", ""); err == nil {
		t.Error("expected error for empty provider ID")
	}
}

func TestGetAll_MergesCountAndPage(t *testing.T) {
	repo := &mockBookingRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
			return []*model.Booking{pendingBooking()}, nil
		},
	}

	svc := newTestDispatchService(repo, &mockProviderRepository{}, &mockLockRepository{}, &mockSyncService{}, &mockEventPublisher{})

	bookings, count, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected count 42, got %d", count)
	}
	if len(bookings) != 1 {
		t.Errorf("expected 1 booking, got %d", len(bookings))
	}
}
