package service

import (
	"encoding/json"
	"net/textproto"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// normalizer implements ports.Normalizer by dispatching to a per-source
// extraction function. Each variant owns its optional-field handling:
// absent fields map to nil, never to an error. Only a missing required
// top-level shape (per source) is malformed.
type normalizer struct{}

// NewNormalizer creates the canonical event normalizer.
func NewNormalizer() ports.Normalizer {
	return &normalizer{}
}

func (n *normalizer) Normalize(req ports.IngestRequest) (domain.NormalizedEvent, error) {
	switch req.Source {
	case domain.SourceGitHub:
		ev, err := normalizeGitHub(req)
		if err != nil {
			return domain.NormalizedEvent{}, err
		}
		return domain.NormalizedEvent{Source: domain.SourceGitHub, GitHub: ev}, nil
	case domain.SourceLinear:
		ev, err := normalizeLinear(req)
		if err != nil {
			return domain.NormalizedEvent{}, err
		}
		return domain.NormalizedEvent{Source: domain.SourceLinear, Linear: ev}, nil
	case domain.SourceSlack:
		ev, err := normalizeSlack(req)
		if err != nil {
			return domain.NormalizedEvent{}, err
		}
		return domain.NormalizedEvent{Source: domain.SourceSlack, Slack: ev}, nil
	default:
		return domain.NormalizedEvent{}, apperror.ErrUnknownSource(string(req.Source))
	}
}

// newEventMeta fills the fields every canonical record shares. Status
// starts at pending; the write path flips it once durability is known.
func newEventMeta(req ports.IngestRequest, eventID, eventType string, eventTS time.Time) domain.EventMeta {
	return domain.EventMeta{
		EventID:        eventID,
		EventType:      eventType,
		Payload:        string(req.RawPayload),
		Headers:        encodeHeaders(req.Headers),
		Signature:      req.Signature,
		DeliveryID:     req.DeliveryID,
		EventTimestamp: eventTS,
		Status:         domain.EventStatusPending,
		ReceivedAt:     time.Now().UTC(),
	}
}

// headerValue looks a header up by its exact name first, then by its
// canonical MIME form, since the HTTP layer hands over canonicalized keys.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	return headers[textproto.CanonicalMIMEHeaderKey(name)]
}

func encodeHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return "{}"
	}
	b, err := json.Marshal(headers)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// eventIDFrom picks the first non-empty candidate, falling back to a fresh
// random identifier. Uniqueness is not enforced downstream: re-delivery of
// the same provider id produces a duplicate row rather than an upsert.
func eventIDFrom(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && *c != "" {
			return *c
		}
	}
	return uuid.New().String()
}
