package service

import (
	"context"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"
)

const (
	defaultListLimit         = 100
	maxListLimit             = 1000
	defaultSummaryWindowDays = 7
)

// queryService implements ports.QueryService.
type queryService struct {
	repo ports.QueryRepository
}

// NewQueryService creates the read path over the canonical tables.
func NewQueryService(repo ports.QueryRepository) ports.QueryService {
	return &queryService{repo: repo}
}

// ListEvents validates and normalizes pagination/filter parameters, then
// delegates to the union query.
func (s *queryService) ListEvents(ctx context.Context, params ports.EventListParams) ([]ports.EventListRow, error) {
	if params.Source != nil && !params.Source.Valid() {
		return nil, apperror.ErrInvalidQueryParam("source")
	}
	if params.Status != nil {
		switch *params.Status {
		case domain.EventStatusPending, domain.EventStatusProcessed, domain.EventStatusFailed:
		default:
			return nil, apperror.ErrInvalidQueryParam("status")
		}
	}

	if params.Limit <= 0 {
		params.Limit = defaultListLimit
	}
	if params.Limit > maxListLimit {
		params.Limit = maxListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	rows, err := s.repo.ListEvents(ctx, params)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return rows, nil
}

// Summarize returns per-day/source/type counts over a trailing window.
func (s *queryService) Summarize(ctx context.Context, windowDays int) ([]ports.EventSummaryRow, error) {
	if windowDays <= 0 {
		windowDays = defaultSummaryWindowDays
	}

	rows, err := s.repo.Summarize(ctx, windowDays)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return rows, nil
}
