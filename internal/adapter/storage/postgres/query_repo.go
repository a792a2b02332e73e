package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
)

// QueryRepo implements ports.QueryRepository: the read path over the union
// of the three canonical tables.
type QueryRepo struct {
	pool Pool
}

// NewQueryRepo creates a new QueryRepo.
func NewQueryRepo(pool Pool) *QueryRepo {
	return &QueryRepo{pool: pool}
}

// listColumns maps each canonical table to the expressions exposed as the
// unified (identifier, actor) pair.
var listColumns = map[domain.SourceKind]struct {
	table      string
	identifier string
	actor      string
}{
	domain.SourceGitHub: {"github_events", "repository_full_name", "sender_login"},
	domain.SourceLinear: {"linear_events", "issue_identifier", "actor_name"},
	domain.SourceSlack:  {"slack_events", "channel_id", "user_id"},
}

// ListEvents returns the union of the canonical tables (or only the table
// matching params.Source), each filtered by the same predicate set, globally
// ordered by received_at descending. Limit/offset apply to the union, not
// per table.
func (r *QueryRepo) ListEvents(ctx context.Context, params ports.EventListParams) ([]ports.EventListRow, error) {
	sources := []domain.SourceKind{domain.SourceGitHub, domain.SourceLinear, domain.SourceSlack}
	if params.Source != nil {
		sources = []domain.SourceKind{*params.Source}
	}

	var args []any
	argIdx := 1

	// Shared predicate set; the same arguments are referenced by every
	// per-table subquery.
	var conditions []string
	if params.EventType != nil {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", argIdx))
		args = append(args, *params.EventType)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("received_at >= $%d", argIdx))
		args = append(args, *params.StartDate)
		argIdx++
	}
	if params.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("received_at <= $%d", argIdx))
		args = append(args, *params.EndDate)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	subqueries := make([]string, 0, len(sources))
	for _, src := range sources {
		cols := listColumns[src]
		subqueries = append(subqueries, fmt.Sprintf(
			`SELECT '%s' AS source, event_type, COALESCE(%s, '') AS identifier, COALESCE(%s, '') AS actor, received_at, status, payload FROM %s%s`,
			src, cols.identifier, cols.actor, cols.table, where,
		))
	}

	query := fmt.Sprintf(
		`SELECT source, event_type, identifier, actor, received_at, status, payload
		 FROM (%s) events
		 ORDER BY received_at DESC
		 LIMIT $%d OFFSET $%d`,
		strings.Join(subqueries, " UNION ALL "), argIdx, argIdx+1,
	)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var result []ports.EventListRow
	for rows.Next() {
		var row ports.EventListRow
		var source, status string
		if err := rows.Scan(&source, &row.EventType, &row.Identifier, &row.Actor, &row.ReceivedAt, &status, &row.Payload); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		row.Source = domain.SourceKind(source)
		row.Status = domain.EventStatus(status)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return result, nil
}

// Summarize groups events by (day, source, event type) over a trailing
// window and reports total/success/failure counts per group.
func (r *QueryRepo) Summarize(ctx context.Context, windowDays int) ([]ports.EventSummaryRow, error) {
	since := time.Now().AddDate(0, 0, -windowDays)

	subqueries := make([]string, 0, len(listColumns))
	for _, src := range []domain.SourceKind{domain.SourceGitHub, domain.SourceLinear, domain.SourceSlack} {
		cols := listColumns[src]
		subqueries = append(subqueries, fmt.Sprintf(
			`SELECT date_trunc('day', received_at) AS day, '%s' AS source, event_type, status FROM %s WHERE received_at >= $1`,
			src, cols.table,
		))
	}

	query := fmt.Sprintf(
		`SELECT day, source, event_type,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'processed') AS succeeded,
			COUNT(*) FILTER (WHERE status = 'failed') AS failed
		 FROM (%s) events
		 GROUP BY day, source, event_type
		 ORDER BY day DESC, source, event_type`,
		strings.Join(subqueries, " UNION ALL "),
	)

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("summarize events: %w", err)
	}
	defer rows.Close()

	var result []ports.EventSummaryRow
	for rows.Next() {
		var row ports.EventSummaryRow
		var source string
		if err := rows.Scan(&row.Day, &source, &row.EventType, &row.Total, &row.Succeeded, &row.Failed); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		row.Source = domain.SourceKind(source)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return result, nil
}
