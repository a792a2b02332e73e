package domain

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus represents the state of a delivery-log row.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	// DeliveryStatusRetrying is reserved for an external retry driver; the
	// gateway itself never writes it.
	DeliveryStatusRetrying DeliveryStatus = "retrying"
)

// WebhookDelivery is the audit row written once per processing attempt,
// success or failure, independent of the canonical event tables.
// The response fields are populated only when the row also represents an
// outbound forward attempt.
type WebhookDelivery struct {
	ID             uuid.UUID
	DeliveryID     string
	WebhookSource  SourceKind
	EventType      string
	TargetURL      *string
	RequestHeaders string // JSON text
	RequestBody    string // JSON text
	RequestMethod  string

	ResponseStatus  *int
	ResponseHeaders *string
	ResponseBody    *string
	ResponseTimeMs  *int64

	Status       DeliveryStatus
	AttemptCount int
	MaxAttempts  int
	NextRetryAt  *time.Time
	ErrorMessage *string
	ErrorCode    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
