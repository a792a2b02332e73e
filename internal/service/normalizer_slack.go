package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"
)

// slackPayload mirrors the Events API envelope. The nested event object is
// the one structurally required piece; everything inside it is optional.
type slackPayload struct {
	TeamID  *string `json:"team_id"`
	EventID *string `json:"event_id"`
	Event   *struct {
		Type        *string `json:"type"`
		Channel     *string `json:"channel"`
		ChannelType *string `json:"channel_type"`
		User        *string `json:"user"`
		Text        *string `json:"text"`
		TS          *string `json:"ts"`
		ThreadTS    *string `json:"thread_ts"`
		FileID      *string `json:"file_id"`
	} `json:"event"`
}

// normalizeSlack maps a Slack Events API callback into the canonical
// record. The event's ts field (fractional seconds) becomes the event
// timestamp, truncated to millisecond precision.
func normalizeSlack(req ports.IngestRequest) (*domain.SlackEvent, error) {
	var p slackPayload
	if err := json.Unmarshal(req.RawPayload, &p); err != nil {
		return nil, apperror.ErrMalformedPayload("slack", err)
	}
	if p.Event == nil {
		return nil, apperror.ErrMalformedPayload("slack", fmt.Errorf("missing event object"))
	}

	eventType := "unknown"
	if p.Event.Type != nil && *p.Event.Type != "" {
		eventType = *p.Event.Type
	}

	eventTS := time.Now().UTC()
	if p.Event.TS != nil {
		if ts, err := slackTimestamp(*p.Event.TS); err == nil {
			eventTS = ts
		}
	}

	ev := &domain.SlackEvent{
		EventMeta: newEventMeta(req, eventIDFrom(req.DeliveryID, p.EventID), eventType, eventTS),
	}
	ev.TeamID = p.TeamID
	ev.ChannelID = p.Event.Channel
	ev.ChannelType = p.Event.ChannelType
	ev.UserID = p.Event.User
	ev.MessageText = p.Event.Text
	ev.MessageTS = p.Event.TS
	ev.ThreadTS = p.Event.ThreadTS
	ev.FileID = p.Event.FileID

	return ev, nil
}

// slackTimestamp converts Slack's "seconds.fraction" string into a UTC
// time at millisecond precision, truncating the sub-millisecond part.
func slackTimestamp(ts string) (time.Time, error) {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slack ts %q: %w", ts, err)
	}

	var ms int64
	if fracPart != "" {
		if len(fracPart) > 3 {
			fracPart = fracPart[:3]
		}
		for len(fracPart) < 3 {
			fracPart += "0"
		}
		ms, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse slack ts %q: %w", ts, err)
		}
	}

	return time.UnixMilli(sec*1000 + ms).UTC(), nil
}
