package service

import (
	"context"
	"errors"

	dispatcherrors "hearth/internal/dispatch/errors"
	"hearth/internal/dispatch/repository"
	"hearth/pkg/config"
	apperrors "hearth/pkg/errors"
	"hearth/pkg/model"
	"hearth/pkg/sanitizer"
)

// ProviderService exposes read-only provider lookups for the dispatch API.
type ProviderService interface {
	GetByID(ctx context.Context, id string) (*model.ServiceProvider, error)
	ListEligible(ctx context.Context, serviceName string) ([]*model.ServiceProvider, error)
}

type providerService struct {
	repo repository.ProviderRepository
	cfg  *config.Config
}

func NewProviderService(repo repository.ProviderRepository, cfg *config.Config) ProviderService {
	return &providerService{repo: repo, cfg: cfg}
}

func (s *providerService) GetByID(ctx context.Context, id string) (*model.ServiceProvider, error) {
	if id == "" {
		return nil, apperrors.InvalidArgument("Provider ID cannot be empty")
	}

	provider, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, dispatcherrors.ErrProviderNotFound) {
			return nil, apperrors.NotFoundWithID("Provider", id)
		}
		if errors.Is(err, dispatcherrors.ErrInvalidID) {
			return nil, apperrors.InvalidArgument("Invalid provider ID format")
		}
		s.cfg.Log.Error("Failed to retrieve provider", "provider_id", id, "error", err)
		return nil, storeError("Failed to retrieve provider", err)
	}
	return provider, nil
}

func (s *providerService) ListEligible(ctx context.Context, serviceName string) ([]*model.ServiceProvider, error) {
	serviceName = sanitizer.NormalizeServiceName(serviceName)
	if serviceName == "" {
		return nil, apperrors.InvalidArgument("Service name cannot be empty")
	}

	providers, err := s.repo.FindEligible(ctx, serviceName)
	if err != nil {
		s.cfg.Log.Error("Failed to list eligible providers", "service_name", serviceName, "error", err)
		return nil, storeError("Failed to retrieve eligible providers", err)
	}
	return providers, nil
}
