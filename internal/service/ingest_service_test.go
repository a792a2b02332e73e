package service

import (
	"context"
	"errors"
	"testing"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/internal/core/ports/mocks"
	"webhook-ingest-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeBuffer struct {
	added []domain.NormalizedEvent
}

func (b *fakeBuffer) Add(ev domain.NormalizedEvent) {
	b.added = append(b.added, ev)
}

type ingestTestDeps struct {
	svc          ports.IngestService
	eventRepo    *mocks.MockEventRepository
	deliveryRepo *mocks.MockDeliveryRepository
	buffer       *fakeBuffer
	ctrl         *gomock.Controller
}

func setupIngestService(t *testing.T, batched bool) *ingestTestDeps {
	ctrl := gomock.NewController(t)
	d := &ingestTestDeps{
		eventRepo:    mocks.NewMockEventRepository(ctrl),
		deliveryRepo: mocks.NewMockDeliveryRepository(ctrl),
		ctrl:         ctrl,
	}

	var buffer eventBuffer
	if batched {
		d.buffer = &fakeBuffer{}
		buffer = d.buffer
	}

	tracker := NewTrackerService(d.deliveryRepo, zerolog.Nop())
	d.svc = NewIngestService(NewNormalizer(), d.eventRepo, tracker, buffer, zerolog.Nop())
	return d
}

func githubPullRequestReq() ports.IngestRequest {
	return ports.IngestRequest{
		Source: domain.SourceGitHub,
		RawPayload: []byte(`{
			"action": "opened",
			"pull_request": {"number": 42, "title": "Fix bug", "state": "open"},
			"repository": {"id": 1, "name": "repo", "full_name": "org/repo"},
			"sender": {"login": "alice", "id": 9}
		}`),
		Headers: map[string]string{"X-GitHub-Event": "pull_request"},
	}
}

func TestIngestService_Direct_Success(t *testing.T) {
	d := setupIngestService(t, false)
	defer d.ctrl.Finish()

	var inserted *domain.GitHubEvent
	d.eventRepo.EXPECT().InsertGitHub(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, ev *domain.GitHubEvent) error {
			inserted = ev
			return nil
		},
	)

	var delivery *domain.WebhookDelivery
	d.deliveryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, dl *domain.WebhookDelivery) error {
			delivery = dl
			return nil
		},
	).Times(1)

	result, err := d.svc.Ingest(context.Background(), githubPullRequestReq())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, domain.EventStatusProcessed, result.Status)
	assert.NotEmpty(t, result.EventID)

	require.NotNil(t, inserted)
	assert.Equal(t, domain.EventStatusProcessed, inserted.Status)
	require.NotNil(t, inserted.ProcessedAt)
	assert.Equal(t, int64(42), *inserted.PullRequestNumber)

	require.NotNil(t, delivery)
	assert.Equal(t, domain.DeliveryStatusDelivered, delivery.Status)
	assert.Equal(t, result.EventID, delivery.DeliveryID)
}

func TestIngestService_Direct_PersistenceFailure(t *testing.T) {
	d := setupIngestService(t, false)
	defer d.ctrl.Finish()

	d.eventRepo.EXPECT().InsertGitHub(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	var delivery *domain.WebhookDelivery
	d.deliveryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, dl *domain.WebhookDelivery) error {
			delivery = dl
			return nil
		},
	).Times(1)

	result, err := d.svc.Ingest(context.Background(), githubPullRequestReq())
	require.Error(t, err)
	assert.Nil(t, result)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_001", appErr.Code)

	// The failed attempt still produced its audit row.
	require.NotNil(t, delivery)
	assert.Equal(t, domain.DeliveryStatusFailed, delivery.Status)
	require.NotNil(t, delivery.ErrorMessage)
	assert.Contains(t, *delivery.ErrorMessage, "disk full")
}

func TestIngestService_Batched_AcceptsBeforeDurability(t *testing.T) {
	d := setupIngestService(t, true)
	defer d.ctrl.Finish()

	// No canonical insert happens on the request path in batched mode.
	var delivery *domain.WebhookDelivery
	d.deliveryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, dl *domain.WebhookDelivery) error {
			delivery = dl
			return nil
		},
	).Times(1)

	result, err := d.svc.Ingest(context.Background(), githubPullRequestReq())
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusPending, result.Status)

	require.Len(t, d.buffer.added, 1)
	assert.Equal(t, result.EventID, d.buffer.added[0].EventID())
	assert.Equal(t, domain.EventStatusPending, d.buffer.added[0].Meta().Status)

	require.NotNil(t, delivery)
	assert.Equal(t, domain.DeliveryStatusPending, delivery.Status)
}

func TestIngestService_NormalizationFailure(t *testing.T) {
	d := setupIngestService(t, false)
	defer d.ctrl.Finish()

	var delivery *domain.WebhookDelivery
	d.deliveryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, dl *domain.WebhookDelivery) error {
			delivery = dl
			return nil
		},
	).Times(1)

	req := ports.IngestRequest{
		Source:     domain.SourceSlack,
		RawPayload: []byte(`{"team_id": "T1"}`),
		Headers:    map[string]string{},
	}

	result, err := d.svc.Ingest(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, result)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ING_001", appErr.Code)

	require.NotNil(t, delivery)
	assert.Equal(t, domain.DeliveryStatusFailed, delivery.Status)
	require.NotNil(t, delivery.ErrorCode)
	assert.Equal(t, "ING_001", *delivery.ErrorCode)
}

func TestIngestService_DeliveryLoggingFailureNeverPropagates(t *testing.T) {
	d := setupIngestService(t, false)
	defer d.ctrl.Finish()

	d.eventRepo.EXPECT().InsertGitHub(gomock.Any(), gomock.Any()).Return(nil)
	d.deliveryRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("audit table gone"))

	result, err := d.svc.Ingest(context.Background(), githubPullRequestReq())
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusProcessed, result.Status)
}
