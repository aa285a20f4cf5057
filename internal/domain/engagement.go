package domain

import (
	"strings"
	"time"
)

// EntityKind names the rows that carry a views_count column.
type EntityKind string

const (
	KindList     EntityKind = "list"
	KindListItem EntityKind = "item"
)

func (k EntityKind) Valid() bool { return k == KindList || k == KindListItem }

// Target addresses a list, or one item inside a list when ListItemID is set.
type Target struct {
	ListID     string  `json:"list_id"`
	ListItemID *string `json:"list_item_id,omitempty"`
}

func (t Target) IsItem() bool { return t.ListItemID != nil && *t.ListItemID != "" }

// Key is stable across processes and used to build cache keys.
func (t Target) Key() string {
	if t.IsItem() {
		return t.ListID + ":" + *t.ListItemID
	}
	return t.ListID + ":-"
}

type ReactionType string

const (
	ReactionLike       ReactionType = "like"
	ReactionLove       ReactionType = "love"
	ReactionFire       ReactionType = "fire"
	ReactionLaugh      ReactionType = "laugh"
	ReactionInsightful ReactionType = "insightful"
)

var reactionTypes = map[ReactionType]struct{}{
	ReactionLike:       {},
	ReactionLove:       {},
	ReactionFire:       {},
	ReactionLaugh:      {},
	ReactionInsightful: {},
}

func (r ReactionType) Valid() bool {
	_, ok := reactionTypes[r]
	return ok
}

func ParseReactionType(s string) (ReactionType, error) {
	r := ReactionType(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrValidationMeta("invalid reaction type", map[string]string{
			"type": "must be one of: like, love, fire, laugh, insightful",
		})
	}
	return r, nil
}

type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

type Bookmark struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Target       Target    `json:"target"`
	CollectionID *string   `json:"collection_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Collection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkFilter selects which bookmarks ListBookmarks returns.
// Uncategorized wins over CollectionID.
type BookmarkFilter struct {
	CollectionID  *string
	Uncategorized bool
}

type SyncError struct {
	Kind  EntityKind `json:"kind"`
	ID    string     `json:"id"`
	Error string     `json:"error"`
}

// SyncRun is the execution record of one reconciler pass.
type SyncRun struct {
	ListsUpdated int           `json:"lists_updated"`
	ItemsUpdated int           `json:"items_updated"`
	Errors       []SyncError   `json:"errors"`
	Skipped      []string      `json:"skipped,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
}

func (r SyncRun) Updated() int { return r.ListsUpdated + r.ItemsUpdated }

func (r SyncRun) ErrorIDs() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.ID)
	}
	return out
}
