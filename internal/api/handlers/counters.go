// counters.go — управление окнами отдела выдачи.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/apirvulescu/bureausys/internal/api/errors"
	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// AdminListCounters — GET /api/v1/admin/counters.
// Состояние всех окон отдела выдачи.
func (h *PortalHandler) AdminListCounters(w http.ResponseWriter, r *http.Request) {
	counters, err := h.loaning.Counters(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if counters == nil {
		counters = []*model.Counter{}
	}
	writeJSON(w, http.StatusOK, counters)
}

// AdminPauseCounter — POST /api/v1/admin/counters/{id}/pause.
// {id} — порядковый номер окна.
func (h *PortalHandler) AdminPauseCounter(w http.ResponseWriter, r *http.Request) {
	counterID, ok := counterNumber(w, r)
	if !ok {
		return
	}

	counter, err := h.loaning.Pause(r.Context(), counterID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, counter)
}

// AdminResumeCounter — POST /api/v1/admin/counters/{id}/resume.
func (h *PortalHandler) AdminResumeCounter(w http.ResponseWriter, r *http.Request) {
	counterID, ok := counterNumber(w, r)
	if !ok {
		return
	}

	counter, err := h.loaning.Resume(r.Context(), counterID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, counter)
}

func counterNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	counterID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || counterID < 1 {
		apierrors.ValidationError(w, "Номер окна — положительное целое число")
		return 0, false
	}
	return counterID, true
}
