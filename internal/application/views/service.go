package views

import (
	"context"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/counter"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/metrics"
)

const MaxBatch = 100

type Options struct {
	DedupTTL  time.Duration
	OpTimeout time.Duration
}

type Service struct {
	store    counter.HotStore
	repo     CountReader
	dispatch Dispatcher

	dedupTTL  time.Duration
	opTimeout time.Duration
}

func New(store counter.HotStore, repo CountReader, dispatch Dispatcher, opts Options) *Service {
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = 24 * time.Hour
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 250 * time.Millisecond
	}
	return &Service{
		store:     store,
		repo:      repo,
		dispatch:  dispatch,
		dedupTTL:  opts.DedupTTL,
		opTimeout: opts.OpTimeout,
	}
}

// ValidateBatch is the boundary check for view batches and count lookups.
func ValidateBatch(ids []string) error {
	if len(ids) == 0 {
		return domain.ErrValidationMeta("invalid ids", map[string]string{"ids": "must not be empty"})
	}
	if len(ids) > MaxBatch {
		return domain.ErrValidationMeta("invalid ids", map[string]string{"ids": "at most 100 ids per request"})
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return domain.ErrValidationMeta("invalid ids", map[string]string{"ids": "each id must be uuid"})
		}
	}
	return nil
}

// RecordItemViews queues one view per distinct item for visitor and returns
// immediately. Nothing is reported back: a dropped event only makes counts lag.
func (s *Service) RecordItemViews(ids []string, visitor domain.VisitorID) {
	if len(ids) > MaxBatch {
		zlog.Warn().Int("ids", len(ids)).Msg("view batch over limit dropped")
		metrics.RecordViewEvent(string(domain.KindListItem), "dropped")
		return
	}
	s.submit(domain.KindListItem, dedupe(ids), visitor)
}

func (s *Service) RecordListView(id string, visitor domain.VisitorID) {
	if id == "" {
		return
	}
	s.submit(domain.KindList, []string{id}, visitor)
}

func (s *Service) submit(kind domain.EntityKind, ids []string, visitor domain.VisitorID) {
	if len(ids) == 0 {
		return
	}
	ok := s.dispatch.TrySubmit(func() { s.record(kind, ids, visitor) })
	if !ok {
		metrics.RecordIngestRejected()
		zlog.Debug().Str("kind", string(kind)).Int("ids", len(ids)).Msg("ingest queue full; views dropped")
	}
}

func (s *Service) record(kind domain.EntityKind, ids []string, visitor domain.VisitorID) {
	for _, id := range ids {
		ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
		outcome, err := s.countOnce(ctx, kind, id, visitor)
		cancel()
		if err != nil {
			zlog.Debug().Err(err).Str("kind", string(kind)).Str("id", id).Msg("view dropped")
		}
		metrics.RecordViewEvent(string(kind), outcome)
	}
}

// countOnce increments the counter only for the caller that placed the dedup
// marker, so concurrent duplicates from one visitor yield a single increment.
func (s *Service) countOnce(ctx context.Context, kind domain.EntityKind, id string, visitor domain.VisitorID) (string, error) {
	seen := counter.SeenKey(kind, id, visitor)
	fresh, err := s.store.SetIfAbsent(ctx, seen, s.dedupTTL)
	if err != nil {
		return "dropped", err
	}
	if !fresh {
		return "duplicate", nil
	}
	if _, err := s.store.IncrBy(ctx, counter.CounterKey(kind, id), 1); err != nil {
		s.releaseMarker(ctx, seen)
		return "dropped", err
	}
	return "counted", nil
}

// releaseMarker lets the visitor be counted on a later view. The op context
// has usually expired by now, so the release gets its own deadline.
func (s *Service) releaseMarker(ctx context.Context, seen string) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
	defer cancel()
	if err := s.store.Unset(rctx, seen); err != nil {
		zlog.Warn().Err(err).Str("key", seen).Msg("failed to release view marker")
	}
}

// ItemViewCounts returns durable counts plus the not-yet-synced hot delta.
// When the hot store is unreachable the durable counts are returned alone.
func (s *Service) ItemViewCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	ids = dedupe(ids)
	base, err := s.repo.ItemViewCounts(ctx, ids)
	if err != nil {
		return nil, domain.ErrUnavailable("view counts unavailable", err)
	}

	out := make(map[string]int64, len(ids))
	for _, id := range ids {
		out[id] = base[id]
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = counter.CounterKey(domain.KindListItem, id)
	}
	hctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	deltas, err := s.store.MGet(hctx, keys...)
	if err != nil {
		zlog.Warn().Err(err).Msg("hot store read failed; serving durable counts")
		return out, nil
	}
	for i, id := range ids {
		out[id] += deltas[i]
	}
	return out, nil
}

func (s *Service) ListViewCount(ctx context.Context, listID string) (int64, error) {
	base, err := s.repo.ListViewCount(ctx, listID)
	if err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			return 0, err
		}
		return 0, domain.ErrUnavailable("view count unavailable", err)
	}

	hctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	delta, err := s.store.Get(hctx, counter.CounterKey(domain.KindList, listID))
	if err != nil {
		zlog.Warn().Err(err).Str("list_id", listID).Msg("hot store read failed; serving durable count")
		return base, nil
	}
	return base + delta, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
