package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceKind_Valid(t *testing.T) {
	tests := []struct {
		name   string
		source SourceKind
		want   bool
	}{
		{"github", SourceGitHub, true},
		{"linear", SourceLinear, true},
		{"slack", SourceSlack, true},
		{"unknown", SourceKind("gitlab"), false},
		{"empty", SourceKind(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.source.Valid())
		})
	}
}

func TestNormalizedEvent_Meta(t *testing.T) {
	gh := &GitHubEvent{EventMeta: EventMeta{EventID: "gh-1"}}
	ln := &LinearEvent{EventMeta: EventMeta{EventID: "ln-1"}}
	sl := &SlackEvent{EventMeta: EventMeta{EventID: "sl-1"}}

	tests := []struct {
		name  string
		event NormalizedEvent
		want  string
	}{
		{"github variant", NormalizedEvent{Source: SourceGitHub, GitHub: gh}, "gh-1"},
		{"linear variant", NormalizedEvent{Source: SourceLinear, Linear: ln}, "ln-1"},
		{"slack variant", NormalizedEvent{Source: SourceSlack, Slack: sl}, "sl-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := tt.event.Meta()
			assert.NotNil(t, meta)
			assert.Equal(t, tt.want, tt.event.EventID())
		})
	}
}

func TestNormalizedEvent_Meta_Mismatched(t *testing.T) {
	// A union whose variant pointer does not match its tag yields no meta.
	e := NormalizedEvent{Source: SourceGitHub, Slack: &SlackEvent{}}
	assert.Nil(t, e.Meta())
	assert.Equal(t, "", e.EventID())
}

func TestEventStatus_Constants(t *testing.T) {
	assert.Equal(t, EventStatus("pending"), EventStatusPending)
	assert.Equal(t, EventStatus("processed"), EventStatusProcessed)
	assert.Equal(t, EventStatus("failed"), EventStatusFailed)
}

func TestDeliveryStatus_Constants(t *testing.T) {
	assert.Equal(t, DeliveryStatus("pending"), DeliveryStatusPending)
	assert.Equal(t, DeliveryStatus("delivered"), DeliveryStatusDelivered)
	assert.Equal(t, DeliveryStatus("failed"), DeliveryStatusFailed)
	assert.Equal(t, DeliveryStatus("retrying"), DeliveryStatusRetrying)
}
