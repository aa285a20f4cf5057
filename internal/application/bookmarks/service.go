package bookmarks

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/events"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

const MaxCollectionName = 64

type Service struct {
	repo  Repo
	clock Clock
	pub   events.EventPublisher
}

func New(repo Repo, clock Clock, pub events.EventPublisher) *Service {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{repo: repo, clock: clock, pub: pub}
}

func requireActor(actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrForbidden("login required")
	}
	return nil
}

func (s *Service) Toggle(ctx context.Context, actorID string, target domain.Target) (bool, error) {
	if err := requireActor(actorID); err != nil {
		return false, err
	}
	bookmarked, err := s.repo.ToggleBookmark(ctx, actorID, target, uuid.NewString(), s.clock.Now().UTC())
	if err != nil {
		return false, err
	}

	if err := s.pub.PublishEvent(ctx, events.RoutingBookmarkToggled, events.BookmarkToggledPayload{
		ListID:     target.ListID,
		ListItemID: target.ListItemID,
		UserID:     actorID,
		Bookmarked: bookmarked,
	}); err != nil {
		zlog.Warn().Err(err).Str("list_id", target.ListID).Msg("publish bookmark.toggled failed")
	}
	return bookmarked, nil
}

// MoveToCollection returns false when either side is not owned by the actor.
// A nil collectionID moves the bookmark back to uncategorized.
func (s *Service) MoveToCollection(ctx context.Context, actorID, bookmarkID string, collectionID *string) (bool, error) {
	if err := requireActor(actorID); err != nil {
		return false, err
	}
	if collectionID != nil && strings.TrimSpace(*collectionID) == "" {
		collectionID = nil
	}
	return s.repo.MoveBookmark(ctx, actorID, bookmarkID, collectionID)
}

func (s *Service) ListBookmarks(ctx context.Context, actorID string, f domain.BookmarkFilter) ([]domain.Bookmark, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if f.Uncategorized {
		f.CollectionID = nil
	}
	return s.repo.ListBookmarks(ctx, actorID, f)
}

// CollectionNameExists is an exact, case-sensitive match.
func (s *Service) CollectionNameExists(ctx context.Context, actorID, name string) (bool, error) {
	if err := requireActor(actorID); err != nil {
		return false, err
	}
	return s.repo.CollectionNameExists(ctx, actorID, name)
}

func (s *Service) CreateCollection(ctx context.Context, actorID, name string) (*domain.Collection, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidationMeta("invalid collection", map[string]string{"name": "required"})
	}
	if utf8.RuneCountInString(name) > MaxCollectionName {
		return nil, domain.ErrValidationMeta("invalid collection", map[string]string{"name": "must be at most 64 characters"})
	}

	exists, err := s.repo.CollectionNameExists(ctx, actorID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrConflict("collection already exists")
	}

	c := &domain.Collection{
		ID:        uuid.NewString(),
		UserID:    actorID,
		Name:      name,
		CreatedAt: s.clock.Now().UTC(),
	}
	// A concurrent create can still hit the unique index; the repo maps it to conflict.
	if err := s.repo.CreateCollection(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListCollections(ctx context.Context, actorID string) ([]domain.Collection, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	return s.repo.ListCollections(ctx, actorID)
}

// DeleteCollection leaves the collection's bookmarks uncategorized.
func (s *Service) DeleteCollection(ctx context.Context, actorID, collectionID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	c, err := s.repo.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	if c.UserID != actorID {
		return domain.ErrForbidden("not the collection owner")
	}
	return s.repo.DeleteCollection(ctx, collectionID)
}
