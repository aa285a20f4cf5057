package handlers

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

type ViewsService interface {
	RecordItemViews(ids []string, visitor domain.VisitorID)
	RecordListView(id string, visitor domain.VisitorID)
	ItemViewCounts(ctx context.Context, ids []string) (map[string]int64, error)
	ListViewCount(ctx context.Context, listID string) (int64, error)
}

type ReactionsService interface {
	Toggle(ctx context.Context, actorID string, target domain.Target, rt domain.ReactionType) (domain.ToggleResult, error)
	Aggregate(ctx context.Context, target domain.Target) (map[domain.ReactionType]int64, error)
	UserReactions(ctx context.Context, target domain.Target, actorID string) ([]domain.ReactionType, error)
}

type BookmarksService interface {
	Toggle(ctx context.Context, actorID string, target domain.Target) (bool, error)
	MoveToCollection(ctx context.Context, actorID, bookmarkID string, collectionID *string) (bool, error)
	ListBookmarks(ctx context.Context, actorID string, f domain.BookmarkFilter) ([]domain.Bookmark, error)
	CreateCollection(ctx context.Context, actorID, name string) (*domain.Collection, error)
	ListCollections(ctx context.Context, actorID string) ([]domain.Collection, error)
	DeleteCollection(ctx context.Context, actorID, collectionID string) error
}

type SyncRunner interface {
	Run(ctx context.Context) (domain.SyncRun, error)
	LastRun() (domain.SyncRun, bool)
}
