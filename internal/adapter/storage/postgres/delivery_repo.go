package postgres

import (
	"context"
	"fmt"

	"webhook-ingest-gateway/internal/core/domain"
)

// DeliveryRepo implements ports.DeliveryRepository. Delivery rows are the
// audit trail: one row per processing attempt, written immediately.
type DeliveryRepo struct {
	pool Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(pool Pool) *DeliveryRepo {
	return &DeliveryRepo{pool: pool}
}

// Create inserts a delivery-log row.
func (r *DeliveryRepo) Create(ctx context.Context, d *domain.WebhookDelivery) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO webhook_deliveries
		(id, delivery_id, webhook_source, event_type, target_url,
		 request_headers, request_body, request_method,
		 response_status, response_headers, response_body, response_time_ms,
		 status, attempt_count, max_attempts, next_retry_at,
		 error_message, error_code, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		d.ID, d.DeliveryID, string(d.WebhookSource), d.EventType, d.TargetURL,
		d.RequestHeaders, d.RequestBody, d.RequestMethod,
		d.ResponseStatus, d.ResponseHeaders, d.ResponseBody, d.ResponseTimeMs,
		string(d.Status), d.AttemptCount, d.MaxAttempts, d.NextRetryAt,
		d.ErrorMessage, d.ErrorCode, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook delivery: %w", err)
	}
	return nil
}
