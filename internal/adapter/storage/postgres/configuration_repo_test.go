package postgres

import (
	"context"
	"testing"
	"time"

	"webhook-ingest-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConfigurationRepo(mock)
	cfg := &domain.WebhookConfiguration{
		ID:         uuid.New(),
		Source:     domain.SourceSlack,
		URL:        "https://gateway.example.com/api/v1/webhooks/slack",
		Secret:     "s3cret",
		EventTypes: []string{"message", "file_shared"},
		Active:     true,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO webhook_configurations").
		WithArgs(cfg.ID, string(cfg.Source), cfg.RemoteID, cfg.URL, cfg.Secret, cfg.EventTypes, cfg.Active, cfg.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), cfg)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurationRepo_GetBySource(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConfigurationRepo(mock)
	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows([]string{"id", "source", "remote_id", "url", "secret", "event_types", "active", "created_at"}).
		AddRow(id, "github", (*string)(nil), "https://gateway.example.com/api/v1/webhooks/github", "s3cret", []string{"push"}, true, now)

	mock.ExpectQuery("SELECT .+ FROM webhook_configurations WHERE source").
		WithArgs("github").
		WillReturnRows(rows)

	configs, err := repo.GetBySource(context.Background(), domain.SourceGitHub)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, id, configs[0].ID)
	assert.Equal(t, domain.SourceGitHub, configs[0].Source)
	assert.Equal(t, []string{"push"}, configs[0].EventTypes)
	assert.True(t, configs[0].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfigurationRepo_GetBySource_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewConfigurationRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM webhook_configurations WHERE source").
		WithArgs("linear").
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "remote_id", "url", "secret", "event_types", "active", "created_at"}))

	configs, err := repo.GetBySource(context.Background(), domain.SourceLinear)
	assert.NoError(t, err)
	assert.Empty(t, configs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
