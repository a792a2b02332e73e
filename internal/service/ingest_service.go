package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// eventBuffer is the slice of the accumulator the write path needs.
type eventBuffer interface {
	Add(ev domain.NormalizedEvent)
}

type ingestService struct {
	normalizer ports.Normalizer
	events     ports.EventRepository
	tracker    ports.DeliveryTracker
	buffer     eventBuffer
	log        zerolog.Logger
}

// NewIngestService creates the write path. A nil buffer selects direct
// mode: every event is persisted synchronously. A non-nil buffer selects
// batched mode: events are acknowledged on acceptance and persisted by
// the accumulator's flush cycle.
func NewIngestService(
	normalizer ports.Normalizer,
	events ports.EventRepository,
	tracker ports.DeliveryTracker,
	buffer eventBuffer,
	log zerolog.Logger,
) ports.IngestService {
	return &ingestService{
		normalizer: normalizer,
		events:     events,
		tracker:    tracker,
		buffer:     buffer,
		log:        log,
	}
}

// Ingest normalizes one inbound event and persists it per the configured
// mode. Exactly one delivery attempt is logged per call, success or
// failure, including normalization failures.
func (s *ingestService) Ingest(ctx context.Context, req ports.IngestRequest) (*ports.IngestResult, error) {
	ev, err := s.normalizer.Normalize(req)
	if err != nil {
		s.tracker.LogAttempt(ctx, failedRequestAttempt(req, err))
		return nil, err
	}

	meta := ev.Meta()

	if s.buffer != nil {
		s.buffer.Add(ev)
		s.tracker.LogAttempt(ctx, eventAttempt(ev, domain.DeliveryStatusPending, nil))
		return &ports.IngestResult{EventID: meta.EventID, Status: domain.EventStatusPending}, nil
	}

	now := time.Now().UTC()
	meta.Status = domain.EventStatusProcessed
	meta.ProcessedAt = &now

	if err := s.insertOne(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("source", string(ev.Source)).Str("event_id", meta.EventID).Msg("canonical insert failed")
		s.tracker.LogAttempt(ctx, eventAttempt(ev, domain.DeliveryStatusFailed, err))
		return nil, apperror.ErrPersistenceFailure(err)
	}

	s.tracker.LogAttempt(ctx, eventAttempt(ev, domain.DeliveryStatusDelivered, nil))
	return &ports.IngestResult{EventID: meta.EventID, Status: domain.EventStatusProcessed}, nil
}

func (s *ingestService) insertOne(ctx context.Context, ev domain.NormalizedEvent) error {
	switch ev.Source {
	case domain.SourceGitHub:
		return s.events.InsertGitHub(ctx, ev.GitHub)
	case domain.SourceLinear:
		return s.events.InsertLinear(ctx, ev.Linear)
	case domain.SourceSlack:
		return s.events.InsertSlack(ctx, ev.Slack)
	default:
		return fmt.Errorf("unknown source %q", ev.Source)
	}
}

// eventAttempt builds the audit row for a normalized event.
func eventAttempt(ev domain.NormalizedEvent, status domain.DeliveryStatus, err error) ports.DeliveryAttempt {
	meta := ev.Meta()
	attempt := ports.DeliveryAttempt{
		DeliveryID: meta.EventID,
		Source:     ev.Source,
		EventType:  meta.EventType,
		Headers:    meta.Headers,
		Body:       meta.Payload,
		Status:     status,
	}
	setAttemptError(&attempt, err)
	return attempt
}

// failedRequestAttempt builds the audit row for an event that never made
// it past normalization. The event type is unknown at this point.
func failedRequestAttempt(req ports.IngestRequest, err error) ports.DeliveryAttempt {
	deliveryID := uuid.New().String()
	if req.DeliveryID != nil && *req.DeliveryID != "" {
		deliveryID = *req.DeliveryID
	}

	attempt := ports.DeliveryAttempt{
		DeliveryID: deliveryID,
		Source:     req.Source,
		EventType:  "unknown",
		Headers:    encodeHeaders(req.Headers),
		Body:       string(req.RawPayload),
		Status:     domain.DeliveryStatusFailed,
	}
	setAttemptError(&attempt, err)
	return attempt
}

func setAttemptError(attempt *ports.DeliveryAttempt, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	attempt.ErrorMessage = &msg

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		attempt.ErrorCode = &appErr.Code
	}
}
