package model

import "time"

// Resident request outcomes mirrored from the linked booking.
const (
	RequestOpen     = "open"
	RequestAccepted = "accepted"
	RequestDenied   = "denied"
)

// ResidentRequest is the homeowner-facing aggregate. The dispatch engine
// never owns it: all writes go through the synchronizer as partial updates
// keyed by id.
type ResidentRequest struct {
	ID          string              `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HomeownerID string              `json:"homeowner_id,omitempty" bson:"homeowner_id,omitempty" validate:"omitempty,mongodb"`
	ServiceName string              `json:"service_name,omitempty" bson:"service_name,omitempty"`
	Status      string              `json:"status" bson:"status"`
	Negotiation *RequestNegotiation `json:"negotiation,omitempty" bson:"negotiation,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// RequestNegotiation mirrors the booking's live negotiation for display.
// It carries no history; the booking keeps the audit trail.
type RequestNegotiation struct {
	IsActive       bool       `json:"is_active" bson:"is_active"`
	ProposedAmount float64    `json:"proposed_amount" bson:"proposed_amount"`
	ProviderID     string     `json:"provider_id" bson:"provider_id"`
	ProviderName   string     `json:"provider_name,omitempty" bson:"provider_name,omitempty"`
	Note           string     `json:"note,omitempty" bson:"note,omitempty"`
	Status         string     `json:"status" bson:"status"`
	RespondedAt    *time.Time `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// ResidentRequestUpdate is the partial update applied by the synchronizer.
// Nil fields are left untouched on the target record.
type ResidentRequestUpdate struct {
	Status      string              `json:"status,omitempty"`
	Negotiation *RequestNegotiation `json:"negotiation,omitempty"`
}
