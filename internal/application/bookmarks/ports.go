package bookmarks

import (
	"context"
	"time"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type Repo interface {
	// ToggleBookmark deletes the (user, target) bookmark if present, inserts it otherwise.
	ToggleBookmark(ctx context.Context, userID string, target domain.Target, newID string, at time.Time) (bool, error)
	// MoveBookmark reports false when the bookmark, or a non-nil collection, is not owned by userID.
	MoveBookmark(ctx context.Context, userID, bookmarkID string, collectionID *string) (bool, error)
	ListBookmarks(ctx context.Context, userID string, f domain.BookmarkFilter) ([]domain.Bookmark, error)

	CollectionNameExists(ctx context.Context, userID, name string) (bool, error)
	CreateCollection(ctx context.Context, c *domain.Collection) error
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)
	ListCollections(ctx context.Context, userID string) ([]domain.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
}
