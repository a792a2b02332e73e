package service

import (
	"context"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type trackerService struct {
	repo ports.DeliveryRepository
	log  zerolog.Logger
}

// NewTrackerService creates a new delivery tracker.
// If repo is nil, attempts are only written to the logger.
func NewTrackerService(repo ports.DeliveryRepository, log zerolog.Logger) ports.DeliveryTracker {
	return &trackerService{repo: repo, log: log}
}

// LogAttempt records one audit row for a processing attempt. It is
// fire-and-log: a failure to persist the row is reported and swallowed,
// because losing an audit row must not abort the primary event.
func (s *trackerService) LogAttempt(ctx context.Context, attempt ports.DeliveryAttempt) {
	logEvent := s.log.Info()
	if attempt.Status == domain.DeliveryStatusFailed {
		logEvent = s.log.Warn()
	}
	logEvent.
		Str("delivery_id", attempt.DeliveryID).
		Str("source", string(attempt.Source)).
		Str("event_type", attempt.EventType).
		Str("status", string(attempt.Status)).
		Msg("delivery attempt")

	if s.repo == nil {
		return
	}

	now := time.Now().UTC()
	delivery := &domain.WebhookDelivery{
		ID:             uuid.New(),
		DeliveryID:     attempt.DeliveryID,
		WebhookSource:  attempt.Source,
		EventType:      attempt.EventType,
		RequestHeaders: attempt.Headers,
		RequestBody:    attempt.Body,
		RequestMethod:  "POST",
		Status:         attempt.Status,
		AttemptCount:   1,
		MaxAttempts:    1,
		ErrorMessage:   attempt.ErrorMessage,
		ErrorCode:      attempt.ErrorCode,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, delivery); err != nil {
		s.log.Warn().Err(err).Str("delivery_id", attempt.DeliveryID).Msg("failed to persist delivery attempt")
	}
}
