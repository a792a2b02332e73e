package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"
)

// inMemoryEventStore implements ports.EventRepository and
// ports.QueryRepository over three in-process tables, mirroring the
// per-source canonical tables of the Postgres adapter. Batch failure can
// be toggled to exercise the accumulator's re-queue path.
type inMemoryEventStore struct {
	mu     sync.RWMutex
	github []domain.GitHubEvent
	linear []domain.LinearEvent
	slack  []domain.SlackEvent

	failBatch  atomic.Bool
	batchCalls atomic.Int64
}

func newInMemoryEventStore() *inMemoryEventStore {
	return &inMemoryEventStore{}
}

func (s *inMemoryEventStore) InsertGitHub(ctx context.Context, e *domain.GitHubEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.github = append(s.github, *e)
	return nil
}

func (s *inMemoryEventStore) InsertLinear(ctx context.Context, e *domain.LinearEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.linear = append(s.linear, *e)
	return nil
}

func (s *inMemoryEventStore) InsertSlack(ctx context.Context, e *domain.SlackEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slack = append(s.slack, *e)
	return nil
}

// InsertBatch is all-or-nothing like its Postgres counterpart: the batch
// is validated up front and only appended once every record checks out.
func (s *inMemoryEventStore) InsertBatch(ctx context.Context, events []domain.NormalizedEvent) error {
	s.batchCalls.Add(1)
	if s.failBatch.Load() {
		return fmt.Errorf("simulated batch insert failure")
	}

	for _, ev := range events {
		if ev.Meta() == nil {
			return fmt.Errorf("unknown source in batch: %s", ev.Source)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		switch ev.Source {
		case domain.SourceGitHub:
			s.github = append(s.github, *ev.GitHub)
		case domain.SourceLinear:
			s.linear = append(s.linear, *ev.Linear)
		case domain.SourceSlack:
			s.slack = append(s.slack, *ev.Slack)
		}
	}
	return nil
}

func (s *inMemoryEventStore) UpdateStatus(ctx context.Context, source domain.SourceKind, eventID string, status domain.EventStatus, errorMessage *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	update := func(m *domain.EventMeta) {
		m.Status = status
		m.ErrorMessage = errorMessage
		m.ProcessedAt = &now
	}

	switch source {
	case domain.SourceGitHub:
		for i := range s.github {
			if s.github[i].EventID == eventID {
				update(&s.github[i].EventMeta)
				return nil
			}
		}
	case domain.SourceLinear:
		for i := range s.linear {
			if s.linear[i].EventID == eventID {
				update(&s.linear[i].EventMeta)
				return nil
			}
		}
	case domain.SourceSlack:
		for i := range s.slack {
			if s.slack[i].EventID == eventID {
				update(&s.slack[i].EventMeta)
				return nil
			}
		}
	default:
		return fmt.Errorf("unknown source: %s", source)
	}
	return fmt.Errorf("event not found: %s/%s", source, eventID)
}

// ListEvents unifies the three tables, filters, orders by receipt time
// descending and paginates over the union, matching the SQL read path.
func (s *inMemoryEventStore) ListEvents(ctx context.Context, params ports.EventListParams) ([]ports.EventListRow, error) {
	s.mu.RLock()
	var rows []ports.EventListRow
	for i := range s.github {
		e := &s.github[i]
		rows = appendIfMatch(rows, params, ports.EventListRow{
			Source:     domain.SourceGitHub,
			EventType:  e.EventType,
			Identifier: deref(e.RepositoryFullName),
			Actor:      deref(e.SenderLogin),
			ReceivedAt: e.ReceivedAt,
			Status:     e.Status,
			Payload:    e.Payload,
		})
	}
	for i := range s.linear {
		e := &s.linear[i]
		rows = appendIfMatch(rows, params, ports.EventListRow{
			Source:     domain.SourceLinear,
			EventType:  e.EventType,
			Identifier: deref(e.IssueIdentifier),
			Actor:      deref(e.ActorName),
			ReceivedAt: e.ReceivedAt,
			Status:     e.Status,
			Payload:    e.Payload,
		})
	}
	for i := range s.slack {
		e := &s.slack[i]
		rows = appendIfMatch(rows, params, ports.EventListRow{
			Source:     domain.SourceSlack,
			EventType:  e.EventType,
			Identifier: deref(e.ChannelID),
			Actor:      deref(e.UserID),
			ReceivedAt: e.ReceivedAt,
			Status:     e.Status,
			Payload:    e.Payload,
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ReceivedAt.After(rows[j].ReceivedAt)
	})

	if params.Offset >= len(rows) {
		return []ports.EventListRow{}, nil
	}
	rows = rows[params.Offset:]
	if params.Limit > 0 && params.Limit < len(rows) {
		rows = rows[:params.Limit]
	}
	return rows, nil
}

// Summarize buckets events by (day, source, event type) over the window.
func (s *inMemoryEventStore) Summarize(ctx context.Context, windowDays int) ([]ports.EventSummaryRow, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)

	type bucket struct {
		day       time.Time
		source    domain.SourceKind
		eventType string
	}
	counts := make(map[bucket]*ports.EventSummaryRow)

	tally := func(source domain.SourceKind, m *domain.EventMeta) {
		if m.ReceivedAt.Before(cutoff) {
			return
		}
		day := m.ReceivedAt.UTC().Truncate(24 * time.Hour)
		key := bucket{day: day, source: source, eventType: m.EventType}
		row, ok := counts[key]
		if !ok {
			row = &ports.EventSummaryRow{Day: day, Source: source, EventType: m.EventType}
			counts[key] = row
		}
		row.Total++
		switch m.Status {
		case domain.EventStatusProcessed:
			row.Succeeded++
		case domain.EventStatusFailed:
			row.Failed++
		}
	}

	s.mu.RLock()
	for i := range s.github {
		tally(domain.SourceGitHub, &s.github[i].EventMeta)
	}
	for i := range s.linear {
		tally(domain.SourceLinear, &s.linear[i].EventMeta)
	}
	for i := range s.slack {
		tally(domain.SourceSlack, &s.slack[i].EventMeta)
	}
	s.mu.RUnlock()

	rows := make([]ports.EventSummaryRow, 0, len(counts))
	for _, row := range counts {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Day.Equal(rows[j].Day) {
			return rows[i].Day.After(rows[j].Day)
		}
		if rows[i].Source != rows[j].Source {
			return rows[i].Source < rows[j].Source
		}
		return rows[i].EventType < rows[j].EventType
	})
	return rows, nil
}

// CountAll reports the total number of persisted canonical rows.
func (s *inMemoryEventStore) CountAll() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.github) + len(s.linear) + len(s.slack)
}

// EventIDs returns every persisted event id across the three tables.
func (s *inMemoryEventStore) EventIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.github)+len(s.linear)+len(s.slack))
	for i := range s.github {
		ids = append(ids, s.github[i].EventID)
	}
	for i := range s.linear {
		ids = append(ids, s.linear[i].EventID)
	}
	for i := range s.slack {
		ids = append(ids, s.slack[i].EventID)
	}
	return ids
}

func appendIfMatch(rows []ports.EventListRow, params ports.EventListParams, row ports.EventListRow) []ports.EventListRow {
	if params.Source != nil && row.Source != *params.Source {
		return rows
	}
	if params.EventType != nil && row.EventType != *params.EventType {
		return rows
	}
	if params.Status != nil && row.Status != *params.Status {
		return rows
	}
	if params.StartDate != nil && row.ReceivedAt.Before(*params.StartDate) {
		return rows
	}
	if params.EndDate != nil && row.ReceivedAt.After(*params.EndDate) {
		return rows
	}
	return append(rows, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// inMemoryDeliveryRepo implements ports.DeliveryRepository. Create can be
// made to fail to verify that the tracker swallows audit-write errors.
type inMemoryDeliveryRepo struct {
	mu         sync.RWMutex
	deliveries []domain.WebhookDelivery

	failCreate atomic.Bool
}

func newInMemoryDeliveryRepo() *inMemoryDeliveryRepo {
	return &inMemoryDeliveryRepo{}
}

func (r *inMemoryDeliveryRepo) Create(ctx context.Context, d *domain.WebhookDelivery) error {
	if r.failCreate.Load() {
		return fmt.Errorf("simulated delivery insert failure")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, *d)
	return nil
}

// All returns a copy of every recorded delivery row.
func (r *inMemoryDeliveryRepo) All() []domain.WebhookDelivery {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.WebhookDelivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}

// inMemoryConfigurationRepo implements ports.ConfigurationRepository.
type inMemoryConfigurationRepo struct {
	mu      sync.RWMutex
	configs []domain.WebhookConfiguration
}

func newInMemoryConfigurationRepo() *inMemoryConfigurationRepo {
	return &inMemoryConfigurationRepo{}
}

func (r *inMemoryConfigurationRepo) Create(ctx context.Context, c *domain.WebhookConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, *c)
	return nil
}

func (r *inMemoryConfigurationRepo) GetBySource(ctx context.Context, source domain.SourceKind) ([]domain.WebhookConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WebhookConfiguration
	for _, c := range r.configs {
		if c.Source == source {
			out = append(out, c)
		}
	}
	return out, nil
}
