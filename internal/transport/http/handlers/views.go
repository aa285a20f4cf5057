package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/views"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/validate"
)

type ViewsHandler struct {
	svc ViewsService
}

func NewViewsHandler(svc ViewsService) *ViewsHandler {
	return &ViewsHandler{svc: svc}
}

// IngestItems accepts immediately; counting happens in the background.
func (h *ViewsHandler) IngestItems(w http.ResponseWriter, r *http.Request) {
	var req dto.ItemViewsReq
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

	h.svc.RecordItemViews(req.IDs, middleware.VisitorID(r))
	response.Data(w, http.StatusAccepted, dto.AcceptedResp{Accepted: true})
}

func (h *ViewsHandler) IngestList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "list_id")
	if !validate.IsUUID(id) {
		response.Err(w, domain.ErrValidationMeta("invalid path param", map[string]string{
			"list_id": "must be uuid",
		}))
		return
	}

	h.svc.RecordListView(id, middleware.VisitorID(r))
	response.Data(w, http.StatusAccepted, dto.AcceptedResp{Accepted: true})
}

// ItemCounts serves GET /views/items?ids=a,b,c.
func (h *ViewsHandler) ItemCounts(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, part := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	if err := views.ValidateBatch(ids); err != nil {
		response.Err(w, err)
		return
	}

	counts, err := h.svc.ItemViewCounts(r.Context(), ids)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ItemViewCountsResp{Counts: counts})
}

func (h *ViewsHandler) ListCount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "list_id")
	if !validate.IsUUID(id) {
		response.Err(w, domain.ErrValidationMeta("invalid path param", map[string]string{
			"list_id": "must be uuid",
		}))
		return
	}

	n, err := h.svc.ListViewCount(r.Context(), id)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ListViewCountResp{ListID: id, Count: n})
}
