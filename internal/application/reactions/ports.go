package reactions

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

// Repo is the authoritative reaction store.
type Repo interface {
	// ToggleReaction flips the actor's reaction inside one transaction and
	// returns the new state with the live count for that type.
	ToggleReaction(ctx context.Context, target domain.Target, userID string, rt domain.ReactionType) (domain.ToggleResult, error)
	CountReactions(ctx context.Context, target domain.Target) (map[domain.ReactionType]int64, error)
	UserReactions(ctx context.Context, target domain.Target, userID string) ([]domain.ReactionType, error)
}

// Cache holds aggregate snapshots. Fills are guarded by a per-target
// generation: Invalidate bumps it, and SetIfGeneration refuses a snapshot
// whose generation was read before the bump.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Generation(ctx context.Context, genKey string) (int64, error)
	SetIfGeneration(ctx context.Context, key string, val any, ttl time.Duration, genKey string, gen int64) (bool, error)
	Invalidate(ctx context.Context, key, genKey string) error
}
