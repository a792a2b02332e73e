package postgres

import (
	"context"
	"fmt"

	"webhook-ingest-gateway/internal/core/domain"
)

// ConfigurationRepo implements ports.ConfigurationRepository. Configuration
// rows are written once at setup time and read-only afterwards.
type ConfigurationRepo struct {
	pool Pool
}

// NewConfigurationRepo creates a new ConfigurationRepo.
func NewConfigurationRepo(pool Pool) *ConfigurationRepo {
	return &ConfigurationRepo{pool: pool}
}

// Create inserts a webhook configuration row.
func (r *ConfigurationRepo) Create(ctx context.Context, c *domain.WebhookConfiguration) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO webhook_configurations (id, source, remote_id, url, secret, event_types, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, string(c.Source), c.RemoteID, c.URL, c.Secret, c.EventTypes, c.Active, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook configuration: %w", err)
	}
	return nil
}

// GetBySource fetches all configurations registered for a source.
func (r *ConfigurationRepo) GetBySource(ctx context.Context, source domain.SourceKind) ([]domain.WebhookConfiguration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, source, remote_id, url, secret, event_types, active, created_at
		 FROM webhook_configurations
		 WHERE source = $1
		 ORDER BY created_at DESC`, string(source))
	if err != nil {
		return nil, fmt.Errorf("list webhook configurations: %w", err)
	}
	defer rows.Close()

	var configs []domain.WebhookConfiguration
	for rows.Next() {
		var c domain.WebhookConfiguration
		var src string
		if err := rows.Scan(&c.ID, &src, &c.RemoteID, &c.URL, &c.Secret, &c.EventTypes, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook configuration: %w", err)
		}
		c.Source = domain.SourceKind(src)
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook configurations: %w", err)
	}
	return configs, nil
}
