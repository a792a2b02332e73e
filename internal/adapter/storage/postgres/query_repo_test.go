package postgres

import (
	"context"
	"testing"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listRowColumns() []string {
	return []string{"source", "event_type", "identifier", "actor", "received_at", "status", "payload"}
}

func TestQueryRepo_ListEvents_AllSources(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewQueryRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows(listRowColumns()).
		AddRow("slack", "message", "C1", "U1", now, "processed", `{}`).
		AddRow("github", "push", "org/repo", "alice", now.Add(-time.Minute), "processed", `{}`)

	// Union of all three tables, paginated globally.
	mock.ExpectQuery("FROM github_events.+UNION ALL.+FROM linear_events.+UNION ALL.+FROM slack_events").
		WithArgs(100, 0).
		WillReturnRows(rows)

	result, err := repo.ListEvents(context.Background(), ports.EventListParams{Limit: 100, Offset: 0})
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, domain.SourceSlack, result[0].Source)
	assert.Equal(t, "C1", result[0].Identifier)
	assert.Equal(t, domain.SourceGitHub, result[1].Source)
	assert.Equal(t, "alice", result[1].Actor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRepo_ListEvents_SingleSourceWithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewQueryRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	source := domain.SourceGitHub
	eventType := "pull_request"
	status := domain.EventStatusFailed
	start := now.Add(-24 * time.Hour)

	rows := pgxmock.NewRows(listRowColumns()).
		AddRow("github", "pull_request", "org/repo", "alice", now, "failed", `{}`)

	mock.ExpectQuery("FROM github_events WHERE event_type").
		WithArgs(eventType, status, start, 10, 20).
		WillReturnRows(rows)

	result, err := repo.ListEvents(context.Background(), ports.EventListParams{
		Source:    &source,
		EventType: &eventType,
		Status:    &status,
		StartDate: &start,
		Limit:     10,
		Offset:    20,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, domain.EventStatusFailed, result[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRepo_Summarize(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewQueryRepo(mock)
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"day", "source", "event_type", "total", "succeeded", "failed"}).
		AddRow(day, "github", "push", int64(12), int64(11), int64(1)).
		AddRow(day, "slack", "message", int64(30), int64(30), int64(0))

	mock.ExpectQuery("GROUP BY day, source, event_type").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(rows)

	result, err := repo.Summarize(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, domain.SourceGitHub, result[0].Source)
	assert.Equal(t, int64(12), result[0].Total)
	assert.Equal(t, int64(11), result[0].Succeeded)
	assert.Equal(t, int64(1), result[0].Failed)
	assert.Equal(t, int64(30), result[1].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
