package service

import "context"

// EventPublisher emits dispatch lifecycle events for downstream consumers
// (notification fan-out lives outside this service). Publishing is
// fire-and-forget: a failed emit is logged and never fails the operation
// that triggered it.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// RejectionRecordedEvent is emitted for every recorded provider rejection.
type RejectionRecordedEvent struct {
	BookingID     string `json:"booking_id"`
	ProviderID    string `json:"provider_id"`
	Reason        string `json:"reason"`
	Status        string `json:"status"`
	RejectedCount int    `json:"rejected_count"`
	EligibleCount int64  `json:"eligible_count"`
}

// CascadeRejectedEvent is emitted when the last eligible provider rejects
// and the booking transitions to rejected.
type CascadeRejectedEvent struct {
	BookingID         string `json:"booking_id"`
	ServiceName       string `json:"service_name"`
	ResidentRequestID string `json:"resident_request_id,omitempty"`
}

// NegotiationProposedEvent is emitted when a provider proposes a price.
type NegotiationProposedEvent struct {
	BookingID      string  `json:"booking_id"`
	ProviderID     string  `json:"provider_id"`
	ProposedAmount float64 `json:"proposed_amount"`
}
