package dto

import "github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"

func ToBookmarkResp(b domain.Bookmark) BookmarkResp {
	return BookmarkResp{
		ID:           b.ID,
		ListID:       b.Target.ListID,
		ListItemID:   b.Target.ListItemID,
		CollectionID: b.CollectionID,
		CreatedAt:    b.CreatedAt,
	}
}

func ToCollectionResp(c domain.Collection) CollectionResp {
	return CollectionResp{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
}

func ToSyncRunResp(r domain.SyncRun) SyncRunResp {
	out := SyncRunResp{
		ListsUpdated: r.ListsUpdated,
		ItemsUpdated: r.ItemsUpdated,
		Updated:      r.Updated(),
		Errors:       make([]SyncErrorResp, 0, len(r.Errors)),
		Skipped:      r.Skipped,
		StartedAt:    r.StartedAt,
		DurationMS:   r.Duration.Milliseconds(),
	}
	if out.Skipped == nil {
		out.Skipped = []string{}
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, SyncErrorResp{Kind: string(e.Kind), ID: e.ID, Error: e.Error})
	}
	return out
}
