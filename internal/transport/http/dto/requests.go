package dto

import "github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"

type ItemViewsReq struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

type TargetReq struct {
	ListID     string  `json:"list_id" validate:"required,uuid"`
	ListItemID *string `json:"list_item_id,omitempty" validate:"omitempty,uuid"`
}

func (t TargetReq) Target() domain.Target {
	return domain.Target{ListID: t.ListID, ListItemID: t.ListItemID}
}

type ToggleReactionReq struct {
	TargetReq
	Type string `json:"type" validate:"required,oneof=like love fire laugh insightful"`
}

type ToggleBookmarkReq struct {
	TargetReq
}

// MoveBookmarkReq: a null or missing collection_id moves the bookmark to uncategorized.
type MoveBookmarkReq struct {
	CollectionID *string `json:"collection_id" validate:"omitempty,uuid"`
}

type CreateCollectionReq struct {
	Name string `json:"name" validate:"required,max=64"`
}
