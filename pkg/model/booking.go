package model

import (
	"time"
)

// Booking lifecycle statuses. Accepted, completed and cancelled freeze the
// booking: no provider response or negotiation is accepted past them. A
// rejected booking stays mutable for the re-offer path.
const (
	BookingPending     = "pending"
	BookingOffered     = "offered"
	BookingNegotiating = "negotiating"
	BookingAccepted    = "accepted"
	BookingRejected    = "rejected"
	BookingCompleted   = "completed"
	BookingCancelled   = "cancelled"
)

// Provider response values recorded in the dispatch log.
const (
	ResponseAccepted = "accepted"
	ResponseRejected = "rejected"
)

// Negotiation statuses for the live offer.
const (
	NegotiationPending  = "pending"
	NegotiationAccepted = "accepted"
	NegotiationDeclined = "declined"
)

// DefaultRejectionReason is stored when a provider rejects without a reason.
const DefaultRejectionReason = "Not specified"

// MaxNegotiationNoteLen bounds notes on price proposals. Rejection reasons
// are free-text and carry no such bound.
const MaxNegotiationNoteLen = 300

type Booking struct {
	ID                 string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ServiceName        string             `json:"service_name" bson:"service_name" validate:"required,min=2,max=100"`
	CustomerName       string             `json:"customer_name" bson:"customer_name" validate:"required,min=2,max=100"`
	CustomerPhone      string             `json:"customer_phone" bson:"customer_phone" validate:"omitempty,e164"`
	CustomerEmail      string             `json:"customer_email,omitempty" bson:"customer_email,omitempty" validate:"omitempty,email"`
	Address            string             `json:"address" bson:"address" validate:"required,min=2,max=300"`
	ScheduledAt        time.Time          `json:"scheduled_at" bson:"scheduled_at" validate:"required"`
	BasePrice          float64            `json:"base_price" bson:"base_price" validate:"gte=0"`
	TotalPrice         float64            `json:"total_price" bson:"total_price" validate:"gte=0"`
	PaymentMethod      string             `json:"payment_method,omitempty" bson:"payment_method,omitempty" validate:"omitempty,oneof=cash card transfer"`
	Quantity           int                `json:"quantity" bson:"quantity" validate:"min=1,max=100"`
	Extras             []ExtraItem        `json:"extras,omitempty" bson:"extras,omitempty" validate:"omitempty,dive"`
	Status             string             `json:"status" bson:"status" validate:"required,oneof=pending offered negotiating accepted rejected completed cancelled"`
	ProviderResponses  []ProviderResponse `json:"provider_responses,omitempty" bson:"provider_responses,omitempty" validate:"omitempty,dive"`
	Negotiation        *Negotiation       `json:"negotiation,omitempty" bson:"negotiation,omitempty"`
	ResidentRequestID  string             `json:"resident_request_id,omitempty" bson:"resident_request_id,omitempty" validate:"omitempty,mongodb"`
	AssignedProviderID string             `json:"assigned_provider_id,omitempty" bson:"assigned_provider_id,omitempty" validate:"omitempty,mongodb"`
	ProviderName       string             `json:"provider_name,omitempty" bson:"provider_name,omitempty"`
	Version            int64              `json:"version" bson:"version"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// ExtraItem is one add-on line item on a booking. Order matters and is
// preserved as submitted by the intake flow.
type ExtraItem struct {
	Name  string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Price float64 `json:"price" bson:"price" validate:"gte=0"`
}

// ProviderResponse is one entry in the booking's append-only dispatch log.
// Entries are never edited or deduplicated after being written.
type ProviderResponse struct {
	ProviderID      string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	Response        string    `json:"response" bson:"response" validate:"required,oneof=accepted rejected"`
	RespondedAt     time.Time `json:"responded_at" bson:"responded_at" validate:"required"`
	RejectionReason string    `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
}

// Negotiation holds the live price offer on a booking. The top-level fields
// always mirror the latest entry of History; History itself is append-only
// and entries are immutable once written.
type Negotiation struct {
	IsActive       bool               `json:"is_active" bson:"is_active"`
	ProposedAmount float64            `json:"proposed_amount" bson:"proposed_amount"`
	ProviderID     string             `json:"provider_id" bson:"provider_id"`
	ProviderName   string             `json:"provider_name,omitempty" bson:"provider_name,omitempty"`
	Note           string             `json:"note,omitempty" bson:"note,omitempty"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	RespondedAt    *time.Time         `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
	History        []NegotiationOffer `json:"history,omitempty" bson:"history,omitempty"`
}

// NegotiationOffer is one immutable snapshot of a provider's proposal.
type NegotiationOffer struct {
	ProposedAmount float64   `json:"proposed_amount" bson:"proposed_amount"`
	ProviderID     string    `json:"provider_id" bson:"provider_id"`
	ProviderName   string    `json:"provider_name,omitempty" bson:"provider_name,omitempty"`
	Note           string    `json:"note,omitempty" bson:"note,omitempty"`
	Status         string    `json:"status" bson:"status"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// IsTerminal reports whether the booking can no longer accept provider
// responses or negotiation offers.
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingAccepted, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// RejectedCount counts rejected entries in the dispatch log. Duplicate
// submissions from the same provider each count; the log is not deduplicated.
func (b *Booking) RejectedCount() int {
	n := 0
	for _, r := range b.ProviderResponses {
		if r.Response == ResponseRejected {
			n++
		}
	}
	return n
}
