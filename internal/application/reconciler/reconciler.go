package reconciler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/counter"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/events"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/metrics"
)

const compensationTimeout = 2 * time.Second

type Options struct {
	// MaxDuration bounds one run; keys not reached in time are reported as skipped.
	MaxDuration time.Duration
}

// Reconciler moves hot view deltas into the durable store.
// It is the only writer of views_count columns.
type Reconciler struct {
	store  counter.HotStore
	writer ViewsWriter
	pub    events.EventPublisher
	opts   Options
	now    func() time.Time
	log    zerolog.Logger

	runMu   sync.Mutex
	lastRun *domain.SyncRun
}

func New(store counter.HotStore, writer ViewsWriter, pub events.EventPublisher, opts Options) *Reconciler {
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 2 * time.Minute
	}
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Reconciler{
		store:  store,
		writer: writer,
		pub:    pub,
		opts:   opts,
		now:    time.Now,
		log:    zlog.With().Str("component", "view_sync").Logger(),
	}
}

// Run drains every pending counter once. Per-entity failures are collected in
// the returned SyncRun; an error is returned only when the pending set itself
// cannot be read.
func (r *Reconciler) Run(ctx context.Context) (domain.SyncRun, error) {
	run := domain.SyncRun{StartedAt: r.now().UTC(), Errors: []domain.SyncError{}}

	keys, err := r.store.Pending(ctx)
	if err != nil {
		metrics.RecordSyncFailed()
		return run, domain.ErrUnavailable("hot counter store unreachable", err)
	}
	sort.Strings(keys)

	runCtx, cancel := context.WithTimeout(ctx, r.opts.MaxDuration)
	defer cancel()

	for i, key := range keys {
		if runCtx.Err() != nil {
			run.Skipped = append(run.Skipped, keys[i:]...)
			break
		}

		kind, id, err := counter.ParseCounterKey(key)
		if err != nil {
			r.log.Warn().Str("key", key).Msg("ignoring malformed pending key")
			continue
		}

		ok, err := r.syncKey(runCtx, key, kind, id)
		if err != nil {
			run.Errors = append(run.Errors, domain.SyncError{Kind: kind, ID: id, Error: err.Error()})
			continue
		}
		if !ok {
			continue
		}
		switch kind {
		case domain.KindList:
			run.ListsUpdated++
		case domain.KindListItem:
			run.ItemsUpdated++
		}
	}

	run.Duration = r.now().Sub(run.StartedAt)
	metrics.RecordSyncRun(run.ListsUpdated, run.ItemsUpdated, len(run.Errors), run.Duration)

	r.runMu.Lock()
	last := run
	r.lastRun = &last
	r.runMu.Unlock()

	if err := r.pub.PublishEvent(ctx, events.RoutingViewsSynced, events.ViewsSyncedPayload{
		ListsUpdated: run.ListsUpdated,
		ItemsUpdated: run.ItemsUpdated,
		Errors:       len(run.Errors),
		Skipped:      len(run.Skipped),
	}); err != nil {
		r.log.Warn().Err(err).Msg("publish views.synced failed")
	}

	return run, nil
}

// syncKey reports false when there was nothing to move (another run drained it first).
func (r *Reconciler) syncKey(ctx context.Context, key string, kind domain.EntityKind, id string) (bool, error) {
	delta, err := r.store.Drain(ctx, key)
	if err != nil {
		return false, err
	}
	if delta == 0 {
		return false, nil
	}

	if err := r.writer.AddViews(ctx, kind, id, delta); err != nil {
		r.compensate(ctx, key, delta)
		return false, err
	}
	return true, nil
}

// compensate puts a drained delta back so the next run retries it.
// It must outlive the run deadline.
func (r *Reconciler) compensate(ctx context.Context, key string, delta int64) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	if _, err := r.store.IncrBy(cctx, key, delta); err != nil {
		r.log.Error().Err(err).Str("key", key).Int64("delta", delta).Msg("failed to restore drained views")
	}
}

func (r *Reconciler) LastRun() (domain.SyncRun, bool) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.lastRun == nil {
		return domain.SyncRun{}, false
	}
	return *r.lastRun, true
}

// Start runs the reconciler on a fixed interval until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.log.Info().Dur("interval", interval).Msg("view sync scheduler started")
		for {
			select {
			case <-ctx.Done():
				r.log.Info().Msg("view sync scheduler stopped")
				return
			case <-ticker.C:
				run, err := r.Run(ctx)
				if err != nil {
					r.log.Error().Err(err).Msg("view sync failed")
					continue
				}
				ev := r.log.Info()
				if len(run.Errors) > 0 || len(run.Skipped) > 0 {
					ev = r.log.Warn()
				}
				ev.Int("lists_updated", run.ListsUpdated).
					Int("items_updated", run.ItemsUpdated).
					Int("errors", len(run.Errors)).
					Int("skipped", len(run.Skipped)).
					Dur("duration", run.Duration).
					Msg("view sync finished")
			}
		}
	}()
}
