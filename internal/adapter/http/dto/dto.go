package dto

// WebhookAck is the response body for an accepted webhook event. In
// batched mode Status is "pending": durability follows asynchronously.
type WebhookAck struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// TokenRequest is the request body for exchanging the admin API key for
// a dashboard JWT.
type TokenRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

// TokenResponse is the response body for a successful token exchange.
type TokenResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// EventResponse is one row of the unified event listing.
type EventResponse struct {
	Source     string `json:"source"`
	EventType  string `json:"event_type"`
	Identifier string `json:"identifier"`
	Actor      string `json:"actor"`
	ReceivedAt string `json:"received_at"`
	Status     string `json:"status"`
	Payload    string `json:"payload"`
}

// EventListResponse wraps the paginated event listing.
type EventListResponse struct {
	Items  []EventResponse `json:"items"`
	Count  int             `json:"count"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// SummaryRowResponse is one (day, source, event type) aggregate.
type SummaryRowResponse struct {
	Day       string `json:"day"`
	Source    string `json:"source"`
	EventType string `json:"event_type"`
	Total     int64  `json:"total"`
	Succeeded int64  `json:"succeeded"`
	Failed    int64  `json:"failed"`
}

// SummaryResponse wraps the event summary aggregation.
type SummaryResponse struct {
	WindowDays int                  `json:"window_days"`
	Rows       []SummaryRowResponse `json:"rows"`
}

// ConfigurationRequest is the request body for registering a webhook
// configuration.
type ConfigurationRequest struct {
	Source     string   `json:"source" binding:"required,oneof=github linear slack"`
	RemoteID   *string  `json:"remote_id,omitempty" binding:"omitempty,safe_id"`
	URL        string   `json:"url" binding:"required,safe_url"`
	Secret     string   `json:"secret" binding:"required,min=8"`
	EventTypes []string `json:"event_types" binding:"required,min=1"`
	Active     *bool    `json:"active,omitempty"`
}

// ConfigurationResponse is the response body for a webhook configuration.
type ConfigurationResponse struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	RemoteID   *string  `json:"remote_id,omitempty"`
	URL        string   `json:"url"`
	EventTypes []string `json:"event_types"`
	Active     bool     `json:"active"`
	CreatedAt  string   `json:"created_at"`
}
