package service

import (
	"context"
	"errors"
	"testing"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTrackerService_LogAttempt_PersistsRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockDeliveryRepository(ctrl)
	svc := NewTrackerService(mockRepo, zerolog.Nop())

	var captured *domain.WebhookDelivery
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, d *domain.WebhookDelivery) error {
			captured = d
			return nil
		},
	)

	svc.LogAttempt(context.Background(), ports.DeliveryAttempt{
		DeliveryID: "d-1",
		Source:     domain.SourceGitHub,
		EventType:  "push",
		Headers:    `{"X-GitHub-Event":"push"}`,
		Body:       `{"ref":"refs/heads/main"}`,
		Status:     domain.DeliveryStatusDelivered,
	})

	require.NotNil(t, captured)
	assert.Equal(t, "d-1", captured.DeliveryID)
	assert.Equal(t, domain.SourceGitHub, captured.WebhookSource)
	assert.Equal(t, "push", captured.EventType)
	assert.Equal(t, domain.DeliveryStatusDelivered, captured.Status)
	assert.Equal(t, 1, captured.AttemptCount)
	assert.Equal(t, "POST", captured.RequestMethod)
	assert.Nil(t, captured.ErrorMessage)
}

func TestTrackerService_LogAttempt_FailedAttemptCarriesError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockDeliveryRepository(ctrl)
	svc := NewTrackerService(mockRepo, zerolog.Nop())

	var captured *domain.WebhookDelivery
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, d *domain.WebhookDelivery) error {
			captured = d
			return nil
		},
	)

	msg := "disk full"
	code := "SYS_001"
	svc.LogAttempt(context.Background(), ports.DeliveryAttempt{
		DeliveryID:   "d-2",
		Source:       domain.SourceSlack,
		EventType:    "message",
		Status:       domain.DeliveryStatusFailed,
		ErrorMessage: &msg,
		ErrorCode:    &code,
	})

	require.NotNil(t, captured)
	assert.Equal(t, domain.DeliveryStatusFailed, captured.Status)
	assert.Equal(t, "disk full", *captured.ErrorMessage)
	assert.Equal(t, "SYS_001", *captured.ErrorCode)
}

func TestTrackerService_LogAttempt_RepoFailureSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockDeliveryRepository(ctrl)
	svc := NewTrackerService(mockRepo, zerolog.Nop())

	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	// Must not panic or propagate.
	svc.LogAttempt(context.Background(), ports.DeliveryAttempt{
		DeliveryID: "d-3",
		Source:     domain.SourceLinear,
		EventType:  "Issue",
		Status:     domain.DeliveryStatusPending,
	})
}

func TestTrackerService_LogAttempt_NilRepo(t *testing.T) {
	svc := NewTrackerService(nil, zerolog.Nop())

	// Should not panic
	svc.LogAttempt(context.Background(), ports.DeliveryAttempt{
		DeliveryID: "d-4",
		Source:     domain.SourceGitHub,
		EventType:  "push",
		Status:     domain.DeliveryStatusDelivered,
	})
}
