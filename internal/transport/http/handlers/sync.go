package handlers

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/dto"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/response"
)

type SyncHandler struct {
	runner SyncRunner
}

func NewSyncHandler(runner SyncRunner) *SyncHandler {
	return &SyncHandler{runner: runner}
}

// Run triggers one reconciliation pass. Partial failures are reported in the
// body with 200; only an unreachable hot store fails the request.
func (h *SyncHandler) Run(w http.ResponseWriter, r *http.Request) {
	run, err := h.runner.Run(r.Context())
	if err != nil {
		response.Err(w, err)
		return
	}
	response.Data(w, http.StatusOK, dto.ToSyncRunResp(run))
}

func (h *SyncHandler) Last(w http.ResponseWriter, r *http.Request) {
	run, ok := h.runner.LastRun()
	if !ok {
		response.Err(w, domain.ErrNotFound("no sync run yet"))
		return
	}
	response.Data(w, http.StatusOK, dto.ToSyncRunResp(run))
}
