package model

import "encoding/json"

// RejectionRequest is the payload a provider sends to decline a booking.
// The reason is free-text of any length; only negotiation notes get
// truncated.
type RejectionRequest struct {
	ProviderID string `json:"provider_id" validate:"required,mongodb"`
	Reason     string `json:"reason,omitempty"`
}

// ProposalRequest is the payload a provider sends to counter-offer a price.
// Amount arrives as json.Number so both "120" and 120 decode, and malformed
// values surface as validation errors instead of decode failures.
type ProposalRequest struct {
	ProviderID string      `json:"provider_id" validate:"required,mongodb"`
	Amount     json.Number `json:"proposed_amount" validate:"required,positive_amount"`
	Note       string      `json:"note,omitempty"`
}
