package dto

import (
	"time"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

type AcceptedResp struct {
	Accepted bool `json:"accepted"`
}

type ItemViewCountsResp struct {
	Counts map[string]int64 `json:"counts"`
}

type ListViewCountResp struct {
	ListID string `json:"list_id"`
	Count  int64  `json:"count"`
}

type ReactionToggleResp struct {
	Type   domain.ReactionType `json:"type"`
	Active bool                `json:"active"`
	Count  int64               `json:"count"`
}

type ReactionsResp struct {
	Counts map[domain.ReactionType]int64 `json:"counts"`
	Mine   []domain.ReactionType         `json:"mine,omitempty"`
}

type BookmarkToggleResp struct {
	Bookmarked bool `json:"bookmarked"`
}

type BookmarkResp struct {
	ID           string    `json:"id"`
	ListID       string    `json:"list_id"`
	ListItemID   *string   `json:"list_item_id,omitempty"`
	CollectionID *string   `json:"collection_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type CollectionResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type SyncErrorResp struct {
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

type SyncRunResp struct {
	ListsUpdated int             `json:"lists_updated"`
	ItemsUpdated int             `json:"items_updated"`
	Updated      int             `json:"updated"`
	Errors       []SyncErrorResp `json:"errors"`
	Skipped      []string        `json:"skipped"`
	StartedAt    time.Time       `json:"started_at"`
	DurationMS   int64           `json:"duration_ms"`
}
