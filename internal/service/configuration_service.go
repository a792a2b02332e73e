package service

import (
	"context"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// configurationService implements ports.ConfigurationService.
type configurationService struct {
	repo ports.ConfigurationRepository
}

// NewConfigurationService creates a new configuration service.
func NewConfigurationService(repo ports.ConfigurationRepository) ports.ConfigurationService {
	return &configurationService{repo: repo}
}

// Register stores a webhook configuration record.
func (s *configurationService) Register(ctx context.Context, cfg *domain.WebhookConfiguration) error {
	if !cfg.Source.Valid() {
		return apperror.Validation("source must be one of github, linear, slack")
	}
	if cfg.URL == "" {
		return apperror.Validation("url is required")
	}

	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

// ListBySource returns the configurations registered for one source.
func (s *configurationService) ListBySource(ctx context.Context, source domain.SourceKind) ([]domain.WebhookConfiguration, error) {
	if !source.Valid() {
		return nil, apperror.ErrInvalidQueryParam("source")
	}

	configs, err := s.repo.GetBySource(ctx, source)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return configs, nil
}
