package reactions

import (
	"context"
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/events"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/metrics"
)

const invalidateTimeout = 2 * time.Second

type Service struct {
	repo  Repo
	cache Cache
	pub   events.EventPublisher
	ttl   time.Duration
}

func New(repo Repo, cache Cache, pub events.EventPublisher, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{repo: repo, cache: cache, pub: pub, ttl: ttl}
}

func cacheKeyAggregate(t domain.Target) string {
	return "reactions:agg:" + t.Key()
}

func cacheKeyGeneration(t domain.Target) string {
	return "reactions:gen:" + t.Key()
}

func (s *Service) Toggle(ctx context.Context, actorID string, target domain.Target, rt domain.ReactionType) (domain.ToggleResult, error) {
	if strings.TrimSpace(actorID) == "" {
		return domain.ToggleResult{}, domain.ErrForbidden("login required")
	}
	if !rt.Valid() {
		return domain.ToggleResult{}, domain.ErrValidation("invalid reaction type")
	}

	res, err := s.repo.ToggleReaction(ctx, target, actorID, rt)
	if err != nil {
		return domain.ToggleResult{}, err
	}

	// The cached aggregate is rebuilt from the authoritative rows on next read.
	s.invalidate(ctx, target)
	metrics.RecordReactionToggle(string(rt), res.Active)

	if err := s.pub.PublishEvent(ctx, events.RoutingReactionToggled, events.ReactionToggledPayload{
		ListID:     target.ListID,
		ListItemID: target.ListItemID,
		UserID:     actorID,
		Type:       string(rt),
		Active:     res.Active,
		Count:      res.Count,
	}); err != nil {
		zlog.Warn().Err(err).Str("list_id", target.ListID).Msg("publish reaction.toggled failed")
	}

	return res, nil
}

// Aggregate serves per-type counts cache-aside. Zero counts are omitted.
// The generation is read before counting so a toggle that commits while the
// count runs makes the fill a no-op instead of a stale entry.
func (s *Service) Aggregate(ctx context.Context, target domain.Target) (map[domain.ReactionType]int64, error) {
	key, genKey := cacheKeyAggregate(target), cacheKeyGeneration(target)

	cacheable := false
	var gen int64
	if s.cache != nil {
		var cached map[domain.ReactionType]int64
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if found {
			metrics.RecordAggregateCache(true)
			return cached, nil
		}

		if gen, err = s.cache.Generation(ctx, genKey); err != nil {
			zlog.Warn().Err(err).Str("key", genKey).Msg("cache generation read failed")
		} else {
			cacheable = true
		}
	}
	metrics.RecordAggregateCache(false)

	counts, err := s.repo.CountReactions(ctx, target)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.ReactionType]int64, len(counts))
	for rt, n := range counts {
		if n > 0 {
			out[rt] = n
		}
	}

	if cacheable {
		stored, err := s.cache.SetIfGeneration(ctx, key, out, s.ttl, genKey, gen)
		if err != nil {
			zlog.Warn().Err(err).Str("key", key).Msg("cache set failed")
		} else if !stored {
			zlog.Debug().Str("key", key).Msg("aggregate changed while counting; not cached")
		}
	}
	return out, nil
}

// UserReactions is never cached: the acting user must see their own toggle.
func (s *Service) UserReactions(ctx context.Context, target domain.Target, actorID string) ([]domain.ReactionType, error) {
	if strings.TrimSpace(actorID) == "" {
		return []domain.ReactionType{}, nil
	}
	return s.repo.UserReactions(ctx, target, actorID)
}

// invalidate runs after commit, so it must not depend on the caller staying
// connected.
func (s *Service) invalidate(ctx context.Context, target domain.Target) {
	if s.cache == nil {
		return
	}
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	key := cacheKeyAggregate(target)
	if err := s.cache.Invalidate(ictx, key, cacheKeyGeneration(target)); err != nil {
		zlog.Warn().Err(err).Str("key", key).Msg("failed to invalidate cache")
	}
}
