package service

import (
	"context"
	"sync"
	"time"

	"webhook-ingest-gateway/internal/core/domain"
	"webhook-ingest-gateway/internal/core/ports"

	"github.com/rs/zerolog"
)

// BatchAccumulator buffers normalized events and flushes them as one
// transactional batch when the size threshold is reached or the flush
// interval elapses. Appends never block while a flush is in progress:
// the flush routine drains a snapshot and producers keep appending to a
// fresh buffer. On flush failure the whole snapshot is prepended back in
// front of anything that arrived since, so chronological order is kept
// and the failed batch retries ahead of newer items.
type BatchAccumulator struct {
	repo     ports.EventRepository
	size     int
	interval time.Duration
	log      zerolog.Logger

	mu  sync.Mutex
	buf []domain.NormalizedEvent

	flushCh chan struct{}
	stopCh  chan struct{}
	done    chan struct{}
}

// NewBatchAccumulator creates an accumulator flushing at batchSize items
// or every interval, whichever comes first.
func NewBatchAccumulator(repo ports.EventRepository, batchSize int, interval time.Duration, log zerolog.Logger) *BatchAccumulator {
	return &BatchAccumulator{
		repo:     repo,
		size:     batchSize,
		interval: interval,
		log:      log,
		flushCh:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the flush worker. All flushes, timer-driven and
// size-driven, run on this single goroutine; there is never more than
// one flush in progress.
func (a *BatchAccumulator) Start() {
	go a.run()
}

func (a *BatchAccumulator) run() {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.flushOnce()
		case <-a.flushCh:
			a.flushOnce()
		case <-a.stopCh:
			return
		}
	}
}

// Add appends an event to the buffer and signals the worker when the
// size threshold is reached. It never blocks, flush in progress or not.
func (a *BatchAccumulator) Add(ev domain.NormalizedEvent) {
	a.mu.Lock()
	a.buf = append(a.buf, ev)
	full := len(a.buf) >= a.size
	a.mu.Unlock()

	if full {
		select {
		case a.flushCh <- struct{}{}:
		default:
			// Worker already has a pending flush signal.
		}
	}
}

// Len reports the current buffer length.
func (a *BatchAccumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buf)
}

// Stop halts the timer and performs one final flush of any buffered
// events. The final flush error is returned so shutdown can surface it
// instead of dropping buffered work silently.
func (a *BatchAccumulator) Stop(ctx context.Context) error {
	close(a.stopCh)
	<-a.done
	return a.flush(ctx)
}

func (a *BatchAccumulator) flushOnce() {
	if err := a.flush(context.Background()); err != nil {
		a.log.Error().Err(err).Msg("batch flush failed, batch re-queued")
	}
}

// flush drains the buffer snapshot and writes it in one transaction. The
// snapshot is taken under the lock; the write happens outside it so
// producers are never stalled by a slow flush. Records are marked
// processed as part of the write, so a committed batch never leaves rows
// stuck at pending; a failed batch reverts to pending before re-queueing.
func (a *BatchAccumulator) flush(ctx context.Context) error {
	a.mu.Lock()
	if len(a.buf) == 0 {
		a.mu.Unlock()
		return nil
	}
	snapshot := a.buf
	a.buf = nil
	a.mu.Unlock()

	now := time.Now().UTC()
	markSnapshot(snapshot, domain.EventStatusProcessed, &now)

	if err := a.repo.InsertBatch(ctx, snapshot); err != nil {
		markSnapshot(snapshot, domain.EventStatusPending, nil)
		a.mu.Lock()
		a.buf = append(snapshot, a.buf...)
		a.mu.Unlock()
		return err
	}

	a.log.Debug().Int("count", len(snapshot)).Msg("batch flushed")
	return nil
}

func markSnapshot(snapshot []domain.NormalizedEvent, status domain.EventStatus, processedAt *time.Time) {
	for _, ev := range snapshot {
		if m := ev.Meta(); m != nil {
			m.Status = status
			m.ProcessedAt = processedAt
		}
	}
}
