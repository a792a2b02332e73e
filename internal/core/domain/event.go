package domain

import (
	"time"
)

// SourceKind identifies which provider a webhook came from.
type SourceKind string

const (
	SourceGitHub SourceKind = "github"
	SourceLinear SourceKind = "linear"
	SourceSlack  SourceKind = "slack"
)

// Valid reports whether the source kind is one of the three supported providers.
func (s SourceKind) Valid() bool {
	switch s {
	case SourceGitHub, SourceLinear, SourceSlack:
		return true
	}
	return false
}

// EventStatus is the processing state of a canonical event row.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusProcessed EventStatus = "processed"
	EventStatusFailed    EventStatus = "failed"
)

// EventMeta holds the columns shared by all three canonical tables.
// Payload and Headers are stored verbatim as serialized JSON and are
// immutable once persisted; only Status, ErrorMessage and ProcessedAt
// may change after insert.
type EventMeta struct {
	EventID        string
	EventType      string
	Action         *string
	Payload        string // JSON text, stored verbatim
	Headers        string // JSON text
	Signature      *string
	DeliveryID     *string
	EventTimestamp time.Time
	Status         EventStatus
	ErrorMessage   *string
	ReceivedAt     time.Time
	ProcessedAt    *time.Time
}

// GitHubEvent is the canonical record for code-host webhooks.
type GitHubEvent struct {
	EventMeta

	RepositoryID       *int64
	RepositoryName     *string
	RepositoryFullName *string
	SenderLogin        *string
	SenderID           *int64

	PullRequestNumber *int64
	PullRequestTitle  *string
	PullRequestState  *string
	CommitSHA         *string
	CommitMessage     *string
	Branch            *string
	TagName           *string
}

// LinearEvent is the canonical record for issue-tracker webhooks.
type LinearEvent struct {
	EventMeta

	TeamID      *string
	TeamKey     *string
	TeamName    *string
	ProjectID   *string
	ProjectName *string

	IssueID         *string
	IssueIdentifier *string
	IssueTitle      *string
	IssueState      *string
	CommentID       *string
	CommentBody     *string
	ActorID         *string
	ActorName       *string
}

// SlackEvent is the canonical record for team-chat webhooks.
type SlackEvent struct {
	EventMeta

	TeamID      *string
	ChannelID   *string
	ChannelType *string
	UserID      *string

	MessageText *string
	MessageTS   *string
	ThreadTS    *string
	FileID      *string
}

// NormalizedEvent is the tagged union produced by normalization. Exactly one
// of the source pointers is non-nil, matching Source.
type NormalizedEvent struct {
	Source SourceKind
	GitHub *GitHubEvent
	Linear *LinearEvent
	Slack  *SlackEvent
}

// Meta returns the shared columns of whichever variant is populated.
func (e NormalizedEvent) Meta() *EventMeta {
	switch e.Source {
	case SourceGitHub:
		if e.GitHub != nil {
			return &e.GitHub.EventMeta
		}
	case SourceLinear:
		if e.Linear != nil {
			return &e.Linear.EventMeta
		}
	case SourceSlack:
		if e.Slack != nil {
			return &e.Slack.EventMeta
		}
	}
	return nil
}

// EventID returns the canonical event id of the populated variant, or "".
func (e NormalizedEvent) EventID() string {
	if m := e.Meta(); m != nil {
		return m.EventID
	}
	return ""
}
