package model

import "testing"

func TestBooking_IsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
	}{
		{BookingPending, false},
		{BookingOffered, false},
		{BookingNegotiating, false},
		{BookingRejected, false},
		{BookingAccepted, true},
		{BookingCompleted, true},
		{BookingCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			b := &Booking{Status: tt.status}
			if got := b.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() with status %q = %v, want %v", tt.status, got, tt.terminal)
			}
		})
	}
}

func TestBooking_RejectedCount(t *testing.T) {
	b := &Booking{
		ProviderResponses: []ProviderResponse{
			{ProviderID: "a", Response: ResponseRejected},
			{ProviderID: "b", Response: ResponseAccepted},
			{ProviderID: "a", Response: ResponseRejected},
		},
	}

	// duplicate rejections from the same provider each count
	if got := b.RejectedCount(); got != 2 {
		t.Errorf("RejectedCount() = %d, want 2", got)
	}

	empty := &Booking{}
	if got := empty.RejectedCount(); got != 0 {
		t.Errorf("RejectedCount() on empty log = %d, want 0", got)
	}
}

func TestServiceProvider_Offers(t *testing.T) {
	p := &ServiceProvider{
		Services: []string{"Plumbing", "Heating"},
		Status:   ProviderActive,
	}

	if !p.Offers("Plumbing") {
		t.Error("Offers(Plumbing) = false, want true")
	}
	if p.Offers("plumbing") {
		t.Error("Offers is case sensitive, lowercased name should not match")
	}
	if p.Offers("Cooking") {
		t.Error("Offers(Cooking) = true, want false")
	}
}

func TestServiceProvider_Eligible(t *testing.T) {
	tests := []struct {
		name     string
		provider ServiceProvider
		service  string
		want     bool
	}{
		{
			name:     "active with service",
			provider: ServiceProvider{Status: ProviderActive, Services: []string{"Plumbing"}},
			service:  "Plumbing",
			want:     true,
		},
		{
			name:     "suspended with service",
			provider: ServiceProvider{Status: ProviderSuspended, Services: []string{"Plumbing"}},
			service:  "Plumbing",
			want:     false,
		},
		{
			name:     "pending with service",
			provider: ServiceProvider{Status: ProviderPending, Services: []string{"Plumbing"}},
			service:  "Plumbing",
			want:     false,
		},
		{
			name:     "active without service",
			provider: ServiceProvider{Status: ProviderActive, Services: []string{"Heating"}},
			service:  "Plumbing",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.provider.Eligible(tt.service); got != tt.want {
				t.Errorf("Eligible(%q) = %v, want %v", tt.service, got, tt.want)
			}
		})
	}
}
