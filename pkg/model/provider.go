package model

import "time"

// Provider account statuses. Only active providers are eligible for dispatch;
// pending covers the admin-approval flow on newly added services.
const (
	ProviderActive    = "active"
	ProviderPending   = "pending"
	ProviderSuspended = "suspended"
)

// ServiceProvider is read-only from the dispatch engine's perspective.
// Account mutation belongs to the provider-facing subsystem.
type ServiceProvider struct {
	ID        string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Services  []string           `json:"services" bson:"services" validate:"required,min=1,dive,min=2,max=100"`
	Rates     map[string]float64 `json:"rates,omitempty" bson:"rates,omitempty"`
	Status    string             `json:"status" bson:"status" validate:"required,oneof=active pending suspended"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Offers reports whether the provider lists the given service.
func (p *ServiceProvider) Offers(serviceName string) bool {
	for _, s := range p.Services {
		if s == serviceName {
			return true
		}
	}
	return false
}

// Eligible reports whether the provider can be offered a booking for the
// given service: active status and the service in its offered set.
func (p *ServiceProvider) Eligible(serviceName string) bool {
	return p.Status == ProviderActive && p.Offers(serviceName)
}
