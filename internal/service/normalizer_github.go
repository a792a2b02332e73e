package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
	"webhook-ingest-gateway/pkg/apperror"
)

// githubEventHeader carries the event type; GitHub never puts it in the body.
const githubEventHeader = "X-GitHub-Event"

const branchRefPrefix = "refs/heads/"

// githubPayload mirrors the subset of the GitHub webhook body we extract.
// Every field is optional; event-type dispatch decides which ones matter.
type githubPayload struct {
	Action     *string `json:"action"`
	Ref        *string `json:"ref"`
	RefType    *string `json:"ref_type"`
	Repository *struct {
		ID       *int64  `json:"id"`
		Name     *string `json:"name"`
		FullName *string `json:"full_name"`
	} `json:"repository"`
	Sender *struct {
		Login *string `json:"login"`
		ID    *int64  `json:"id"`
	} `json:"sender"`
	PullRequest *struct {
		Number *int64  `json:"number"`
		Title  *string `json:"title"`
		State  *string `json:"state"`
	} `json:"pull_request"`
	HeadCommit *struct {
		ID      *string `json:"id"`
		Message *string `json:"message"`
	} `json:"head_commit"`
	Release *struct {
		TagName *string `json:"tag_name"`
	} `json:"release"`
}

// normalizeGitHub maps a GitHub webhook into the canonical record. GitHub
// supplies no reliable event timestamp across event types, so receipt time
// is used.
func normalizeGitHub(req ports.IngestRequest) (*domain.GitHubEvent, error) {
	eventType := headerValue(req.Headers, githubEventHeader)
	if eventType == "" {
		return nil, apperror.ErrMalformedPayload("github", fmt.Errorf("missing %s header", githubEventHeader))
	}

	var p githubPayload
	if err := json.Unmarshal(req.RawPayload, &p); err != nil {
		return nil, apperror.ErrMalformedPayload("github", err)
	}

	ev := &domain.GitHubEvent{
		EventMeta: newEventMeta(req, eventIDFrom(req.DeliveryID), eventType, time.Now().UTC()),
	}
	ev.Action = p.Action

	if p.Repository != nil {
		ev.RepositoryID = p.Repository.ID
		ev.RepositoryName = p.Repository.Name
		ev.RepositoryFullName = p.Repository.FullName
	}
	if p.Sender != nil {
		ev.SenderLogin = p.Sender.Login
		ev.SenderID = p.Sender.ID
	}

	switch eventType {
	case "pull_request":
		if p.PullRequest != nil {
			ev.PullRequestNumber = p.PullRequest.Number
			ev.PullRequestTitle = p.PullRequest.Title
			ev.PullRequestState = p.PullRequest.State
		}
	case "push":
		if p.HeadCommit != nil {
			ev.CommitSHA = p.HeadCommit.ID
			ev.CommitMessage = p.HeadCommit.Message
		}
		if p.Ref != nil {
			branch := strings.TrimPrefix(*p.Ref, branchRefPrefix)
			ev.Branch = &branch
		}
	case "create", "delete":
		// ref_type discriminates between branch and tag events.
		if p.Ref != nil && p.RefType != nil {
			switch *p.RefType {
			case "branch":
				ev.Branch = p.Ref
			case "tag":
				ev.TagName = p.Ref
			}
		}
	case "release":
		if p.Release != nil {
			ev.TagName = p.Release.TagName
		}
	}

	return ev, nil
}
