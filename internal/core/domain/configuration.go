package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookConfiguration is the static record of a registered webhook.
// Rows are written once at setup time and treated as read-only afterwards.
type WebhookConfiguration struct {
	ID         uuid.UUID
	Source     SourceKind
	RemoteID   *string
	URL        string
	Secret     string
	EventTypes []string
	Active     bool
	CreatedAt  time.Time
}
