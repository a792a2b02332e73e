package service

import (
	"encoding/json"
	"fmt"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"
)

// linearPayload mirrors the subset of the Linear webhook body we extract.
// Sub-objects are guarded independently; a missing project never blocks
// team or issue extraction.
type linearPayload struct {
	Type      *string    `json:"type"`
	Action    *string    `json:"action"`
	CreatedAt *time.Time `json:"createdAt"`
	WebhookID *string    `json:"webhookId"`
	Actor     *struct {
		ID   *string `json:"id"`
		Name *string `json:"name"`
	} `json:"actor"`
	Data *struct {
		ID         *string `json:"id"`
		Identifier *string `json:"identifier"`
		Title      *string `json:"title"`
		Body       *string `json:"body"`
		State      *struct {
			Name *string `json:"name"`
		} `json:"state"`
		Team *struct {
			ID   *string `json:"id"`
			Key  *string `json:"key"`
			Name *string `json:"name"`
		} `json:"team"`
		Project *struct {
			ID   *string `json:"id"`
			Name *string `json:"name"`
		} `json:"project"`
	} `json:"data"`
}

// normalizeLinear maps a Linear webhook into the canonical record. The
// payload's createdAt is the event timestamp when present.
func normalizeLinear(req ports.IngestRequest) (*domain.LinearEvent, error) {
	var p linearPayload
	if err := json.Unmarshal(req.RawPayload, &p); err != nil {
		return nil, apperror.ErrMalformedPayload("linear", err)
	}
	if p.Type == nil || *p.Type == "" {
		return nil, apperror.ErrMalformedPayload("linear", fmt.Errorf("missing type field"))
	}

	eventTS := time.Now().UTC()
	if p.CreatedAt != nil {
		eventTS = p.CreatedAt.UTC()
	}

	ev := &domain.LinearEvent{
		EventMeta: newEventMeta(req, eventIDFrom(req.DeliveryID, p.WebhookID), *p.Type, eventTS),
	}
	ev.Action = p.Action

	if p.Actor != nil {
		ev.ActorID = p.Actor.ID
		ev.ActorName = p.Actor.Name
	}
	if p.Data != nil {
		d := p.Data
		if d.Team != nil {
			ev.TeamID = d.Team.ID
			ev.TeamKey = d.Team.Key
			ev.TeamName = d.Team.Name
		}
		if d.Project != nil {
			ev.ProjectID = d.Project.ID
			ev.ProjectName = d.Project.Name
		}
		switch *p.Type {
		case "Comment":
			ev.CommentID = d.ID
			ev.CommentBody = d.Body
		default:
			// Issue and issue-like types carry identity on data itself.
			ev.IssueID = d.ID
			ev.IssueIdentifier = d.Identifier
			ev.IssueTitle = d.Title
			if d.State != nil {
				ev.IssueState = d.State.Name
			}
		}
	}

	return ev, nil
}
