package ports

import (
	"context"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
)

//go:generate mockgen -source=repositories.go -destination=mocks/repositories.go -package=mocks

// EventRepository defines persistence operations for the three canonical
// event tables.
type EventRepository interface {
	InsertGitHub(ctx context.Context, e *domain.GitHubEvent) error
	InsertLinear(ctx context.Context, e *domain.LinearEvent) error
	InsertSlack(ctx context.Context, e *domain.SlackEvent) error

	// InsertBatch writes a heterogeneous sequence of normalized events inside
	// a single database transaction. Either every record is committed or none
	// are; the caller re-queues the whole batch on failure.
	InsertBatch(ctx context.Context, events []domain.NormalizedEvent) error

	// UpdateStatus mutates the only post-insert-mutable columns of a
	// canonical row: status, error_message and processed_at.
	UpdateStatus(ctx context.Context, source domain.SourceKind, eventID string, status domain.EventStatus, errorMessage *string) error
}

// DeliveryRepository defines persistence for the delivery-log audit table.
// Delivery rows are written immediately, never batched.
type DeliveryRepository interface {
	Create(ctx context.Context, d *domain.WebhookDelivery) error
}

// ConfigurationRepository defines persistence for registered webhook
// configurations (write-once rows).
type ConfigurationRepository interface {
	Create(ctx context.Context, c *domain.WebhookConfiguration) error
	GetBySource(ctx context.Context, source domain.SourceKind) ([]domain.WebhookConfiguration, error)
}

// EventListParams holds filter + pagination for the cross-table event listing.
// Pagination applies to the union of the selected tables, not per table.
type EventListParams struct {
	Source    *domain.SourceKind
	EventType *string
	Status    *domain.EventStatus
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// EventListRow is one row of the unified event listing.
type EventListRow struct {
	Source     domain.SourceKind
	EventType  string
	Identifier string // repository / team / channel identity, per source
	Actor      string
	ReceivedAt time.Time
	Status     domain.EventStatus
	Payload    string
}

// EventSummaryRow is one (day, source, event type) aggregation bucket.
type EventSummaryRow struct {
	Day       time.Time
	Source    domain.SourceKind
	EventType string
	Total     int64
	Succeeded int64
	Failed    int64
}

// QueryRepository is the read path over the canonical tables.
type QueryRepository interface {
	ListEvents(ctx context.Context, params EventListParams) ([]EventListRow, error)
	Summarize(ctx context.Context, windowDays int) ([]EventSummaryRow, error)
}
