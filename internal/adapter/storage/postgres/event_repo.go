package postgres

import (
	"context"
	"fmt"
	"time"

	"webhook-ingest-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// EventRepo implements ports.EventRepository against the three canonical
// per-source tables.
type EventRepo struct {
	pool Pool
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(pool Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const insertGitHubSQL = `INSERT INTO github_events (event_id, event_type, action,
	repository_id, repository_name, repository_full_name, sender_login, sender_id,
	pull_request_number, pull_request_title, pull_request_state,
	commit_sha, commit_message, branch, tag_name,
	payload, headers, signature, delivery_id, event_timestamp,
	status, error_message, received_at, processed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`

const insertLinearSQL = `INSERT INTO linear_events (event_id, event_type, action,
	team_id, team_key, team_name, project_id, project_name,
	issue_id, issue_identifier, issue_title, issue_state,
	comment_id, comment_body, actor_id, actor_name,
	payload, headers, signature, delivery_id, event_timestamp,
	status, error_message, received_at, processed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`

const insertSlackSQL = `INSERT INTO slack_events (event_id, event_type, action,
	team_id, channel_id, channel_type, user_id,
	message_text, message_ts, thread_ts, file_id,
	payload, headers, signature, delivery_id, event_timestamp,
	status, error_message, received_at, processed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

// InsertGitHub inserts a canonical code-host event row.
func (r *EventRepo) InsertGitHub(ctx context.Context, e *domain.GitHubEvent) error {
	return r.insertGitHub(ctx, r.pool, e)
}

// InsertLinear inserts a canonical issue-tracker event row.
func (r *EventRepo) InsertLinear(ctx context.Context, e *domain.LinearEvent) error {
	return r.insertLinear(ctx, r.pool, e)
}

// InsertSlack inserts a canonical team-chat event row.
func (r *EventRepo) InsertSlack(ctx context.Context, e *domain.SlackEvent) error {
	return r.insertSlack(ctx, r.pool, e)
}

func (r *EventRepo) insertGitHub(ctx context.Context, db execer, e *domain.GitHubEvent) error {
	_, err := db.Exec(ctx, insertGitHubSQL,
		e.EventID, e.EventType, e.Action,
		e.RepositoryID, e.RepositoryName, e.RepositoryFullName, e.SenderLogin, e.SenderID,
		e.PullRequestNumber, e.PullRequestTitle, e.PullRequestState,
		e.CommitSHA, e.CommitMessage, e.Branch, e.TagName,
		e.Payload, e.Headers, e.Signature, e.DeliveryID, e.EventTimestamp,
		e.Status, e.ErrorMessage, e.ReceivedAt, e.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert github event: %w", err)
	}
	return nil
}

func (r *EventRepo) insertLinear(ctx context.Context, db execer, e *domain.LinearEvent) error {
	_, err := db.Exec(ctx, insertLinearSQL,
		e.EventID, e.EventType, e.Action,
		e.TeamID, e.TeamKey, e.TeamName, e.ProjectID, e.ProjectName,
		e.IssueID, e.IssueIdentifier, e.IssueTitle, e.IssueState,
		e.CommentID, e.CommentBody, e.ActorID, e.ActorName,
		e.Payload, e.Headers, e.Signature, e.DeliveryID, e.EventTimestamp,
		e.Status, e.ErrorMessage, e.ReceivedAt, e.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert linear event: %w", err)
	}
	return nil
}

func (r *EventRepo) insertSlack(ctx context.Context, db execer, e *domain.SlackEvent) error {
	_, err := db.Exec(ctx, insertSlackSQL,
		e.EventID, e.EventType, e.Action,
		e.TeamID, e.ChannelID, e.ChannelType, e.UserID,
		e.MessageText, e.MessageTS, e.ThreadTS, e.FileID,
		e.Payload, e.Headers, e.Signature, e.DeliveryID, e.EventTimestamp,
		e.Status, e.ErrorMessage, e.ReceivedAt, e.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert slack event: %w", err)
	}
	return nil
}

// InsertBatch writes a heterogeneous batch of normalized events inside a
// single transaction, dispatching each record to its source's insert
// statement. The batch is all-or-nothing: the transaction commits only if
// every insert succeeds and rolls back entirely otherwise.
func (r *EventRepo) InsertBatch(ctx context.Context, events []domain.NormalizedEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ev := range events {
		switch ev.Source {
		case domain.SourceGitHub:
			err = r.insertGitHub(ctx, tx, ev.GitHub)
		case domain.SourceLinear:
			err = r.insertLinear(ctx, tx, ev.Linear)
		case domain.SourceSlack:
			err = r.insertSlack(ctx, tx, ev.Slack)
		default:
			err = fmt.Errorf("unknown source in batch: %s", ev.Source)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch transaction: %w", err)
	}
	return nil
}

// UpdateStatus updates the mutable columns of a canonical row: status,
// error_message and processed_at. Payload and headers are immutable.
func (r *EventRepo) UpdateStatus(ctx context.Context, source domain.SourceKind, eventID string, status domain.EventStatus, errorMessage *string) error {
	table, err := tableFor(source)
	if err != nil {
		return err
	}

	now := time.Now()
	query := fmt.Sprintf(`UPDATE %s SET status = $1, error_message = $2, processed_at = $3 WHERE event_id = $4`, table)

	tag, err := r.pool.Exec(ctx, query, status, errorMessage, now, eventID)
	if err != nil {
		return fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event not found: %s/%s", source, eventID)
	}
	return nil
}

// tableFor maps a source kind to its canonical table name.
func tableFor(source domain.SourceKind) (string, error) {
	switch source {
	case domain.SourceGitHub:
		return "github_events", nil
	case domain.SourceLinear:
		return "linear_events", nil
	case domain.SourceSlack:
		return "slack_events", nil
	}
	return "", fmt.Errorf("unknown source: %s", source)
}
