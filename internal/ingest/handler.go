// AngelaMos | 2026
// handler.go

package ingest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

type Handler struct {
	job *Job
}

func NewHandler(job *Job) *Handler {
	return &Handler{job: job}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/refresh", h.Refresh)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.job.Refresh(r.Context())
	if err != nil {
		core.Fail(w, r, http.StatusInternalServerError, "Failed to refresh rates: "+err.Error())
		return
	}

	core.OK(w, r, core.M{
		"updated":     result.Updated,
		"skipped":     result.Skipped,
		"finished_at": result.FinishedAt,
	})
}
