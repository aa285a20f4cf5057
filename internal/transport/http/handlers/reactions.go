package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/response"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/validate"
)

type ReactionsHandler struct {
	svc ReactionsService
}

func NewReactionsHandler(svc ReactionsService) *ReactionsHandler {
	return &ReactionsHandler{svc: svc}
}

func (h *ReactionsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req dto.ToggleReactionReq
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
	rt, err := domain.ParseReactionType(req.Type)
	if err != nil {
		response.Err(w, err)
		return
	}

	res, err := h.svc.Toggle(r.Context(), middleware.UserID(r), req.Target(), rt)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ReactionToggleResp{Type: rt, Active: res.Active, Count: res.Count})
}

// Get returns the aggregate; authenticated callers also get their own reactions.
func (h *ReactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	target, err := targetFromQuery(r)
	if err != nil {
		response.Err(w, err)
		return
	}

	counts, err := h.svc.Aggregate(r.Context(), target)
	if err != nil {
		response.Err(w, err)
		return
	}
	out := dto.ReactionsResp{Counts: counts}

	if uid := middleware.UserID(r); uid != "" {
		mine, err := h.svc.UserReactions(r.Context(), target, uid)
		if err != nil {
			response.Err(w, err)
			return
		}
		out.Mine = mine
	}
	response.Data(w, http.StatusOK, out)
}

func targetFromQuery(r *http.Request) (domain.Target, error) {
	q := r.URL.Query()
	req := dto.TargetReq{ListID: q.Get("list_id")}
	if v := q.Get("list_item_id"); v != "" {
		req.ListItemID = &v
	}
	if err := validate.Struct(req); err != nil {
		return domain.Target{}, err
	}
	return req.Target(), nil
}
