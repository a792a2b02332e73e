package ports

import (
	"context"
	"time"

	"webhook-ingest-gateway/internal/core/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=services.go -destination=mocks/services.go -package=mocks

// IngestRequest is the input the gateway consumes from its HTTP-facing
// collaborator for one inbound event. RawPayload is the verbatim body;
// each normalizer decodes the subset it needs. The signature has already
// been verified upstream; it is carried purely for audit logging.
type IngestRequest struct {
	Source     domain.SourceKind
	RawPayload []byte
	Headers    map[string]string
	Signature  *string
	DeliveryID *string
}

// IngestResult acknowledges an ingested event. In batched mode Status is
// pending: acceptance is acknowledged before durability is confirmed.
type IngestResult struct {
	EventID string
	Status  domain.EventStatus
}

// IngestService is the write path: normalize, persist (direct or batched),
// and track the delivery outcome.
type IngestService interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
}

// Normalizer maps a raw provider payload into a canonical event record.
type Normalizer interface {
	Normalize(req IngestRequest) (domain.NormalizedEvent, error)
}

// DeliveryTracker records one audit row per processing attempt. Its own
// failure is logged and swallowed; losing an audit row must not abort
// processing of the primary event.
type DeliveryTracker interface {
	LogAttempt(ctx context.Context, attempt DeliveryAttempt)
}

// DeliveryAttempt describes one processing attempt for the audit trail.
type DeliveryAttempt struct {
	DeliveryID   string
	Source       domain.SourceKind
	EventType    string
	Headers      string // JSON text
	Body         string // JSON text
	Status       domain.DeliveryStatus
	ErrorMessage *string
	ErrorCode    *string
}

// QueryService is the read path over the canonical tables.
type QueryService interface {
	ListEvents(ctx context.Context, params EventListParams) ([]EventListRow, error)
	Summarize(ctx context.Context, windowDays int) ([]EventSummaryRow, error)
}

// ConfigurationService manages registered webhook configurations.
type ConfigurationService interface {
	Register(ctx context.Context, cfg *domain.WebhookConfiguration) error
	ListBySource(ctx context.Context, source domain.SourceKind) ([]domain.WebhookConfiguration, error)
}

// TokenService handles JWT token operations for the dashboard API.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	TokenID uuid.UUID
	Subject string
}
