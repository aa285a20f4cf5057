package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/validate"
)

type BookmarksHandler struct {
	svc BookmarksService
}

func NewBookmarksHandler(svc BookmarksService) *BookmarksHandler {
	return &BookmarksHandler{svc: svc}
}

func (h *BookmarksHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleBookmarkReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or invalid fields",
		}))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, err)
		return
	}

	on, err := h.svc.Toggle(r.Context(), middleware.UserID(r), req.Target())
	if err != nil {
		response.Err(w, err)
		return
	}
	response.Data(w, http.StatusOK, dto.BookmarkToggleResp{Bookmarked: on})
}

// List accepts ?uncategorized=true or ?collection_id=<uuid>; neither lists all.
func (h *BookmarksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f domain.BookmarkFilter
	if q.Get("uncategorized") == "true" {
		f.Uncategorized = true
	} else if v := q.Get("collection_id"); v != "" {
		if !validate.IsUUID(v) {
			response.Err(w, domain.ErrValidationMeta("invalid query param", map[string]string{
				"collection_id": "must be uuid",
			}))
			return
		}
		f.CollectionID = &v
	}

	items, err := h.svc.ListBookmarks(r.Context(), middleware.UserID(r), f)
	if err != nil {
		response.Err(w, err)
		return
	}
	out := make([]dto.BookmarkResp, 0, len(items))
	for _, b := range items {
		out = append(out, dto.ToBookmarkResp(b))
	}
	response.Data(w, http.StatusOK, out)
}

// Move reports a bookmark or collection the actor does not own as not found.
func (h *BookmarksHandler) Move(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookmark_id")
	if !validate.IsUUID(id) {
		response.Err(w, domain.ErrValidationMeta("invalid path param", map[string]string{
			"bookmark_id": "must be uuid",
		}))
		return
	}
	var req dto.MoveBookmarkReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or invalid fields",
		}))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, err)
		return
	}

	ok, err := h.svc.MoveToCollection(r.Context(), middleware.UserID(r), id, req.CollectionID)
	if err != nil {
		response.Err(w, err)
		return
	}
	if !ok {
		response.Err(w, domain.ErrNotFound("bookmark or collection not found"))
		return
	}
	response.Data(w, http.StatusOK, map[string]any{"id": id, "collection_id": req.CollectionID})
}

func (h *BookmarksHandler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCollectionReq
	if err := validate.DecodeJSON(r, &req); err != nil {
		response.Err(w, domain.ErrValidationMeta("invalid json body", map[string]string{
			"body": "malformed JSON or invalid fields",
		}))
		return
	}
	if err := validate.Struct(req); err != nil {
		response.Err(w, err)
		return
	}

	c, err := h.svc.CreateCollection(r.Context(), middleware.UserID(r), req.Name)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.Data(w, http.StatusCreated, dto.ToCollectionResp(*c))
}

func (h *BookmarksHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListCollections(r.Context(), middleware.UserID(r))
	if err != nil {
		response.Err(w, err)
		return
	}
	out := make([]dto.CollectionResp, 0, len(items))
	for _, c := range items {
		out = append(out, dto.ToCollectionResp(c))
	}
	response.Data(w, http.StatusOK, out)
}

func (h *BookmarksHandler) DeleteCollection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collection_id")
	if !validate.IsUUID(id) {
		response.Err(w, domain.ErrValidationMeta("invalid path param", map[string]string{
			"collection_id": "must be uuid",
		}))
		return
	}
	if err := h.svc.DeleteCollection(r.Context(), middleware.UserID(r), id); err != nil {
		response.Err(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
