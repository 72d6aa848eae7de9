// config.go — конфигурация офисов администратора.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/apirvulescu/bureausys/internal/api/errors"
	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/service"
)

// officeConfigRequest — форма конфигурации офисов.
type officeConfigRequest struct {
	Offices []service.OfficeInput `json:"offices"`
}

// AdminSaveConfig — POST /api/v1/admin/config.
// Сохраняет конфигурацию офисов: количество окон ("counters=<число>")
// и списки документов с зависимостями.
func (h *PortalHandler) AdminSaveConfig(w http.ResponseWriter, r *http.Request) {
	var req officeConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Offices) == 0 {
		apierrors.ValidationError(w, "Конфигурация должна содержать хотя бы один офис")
		return
	}

	offices, err := h.admin.SaveOfficeConfig(r.Context(), req.Offices)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offices)
}

// AdminGetConfig — GET /api/v1/admin/config.
func (h *PortalHandler) AdminGetConfig(w http.ResponseWriter, r *http.Request) {
	offices, err := h.admin.OfficeConfig(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if offices == nil {
		offices = []*model.Office{}
	}
	writeJSON(w, http.StatusOK, offices)
}

// AdminDeleteOffice — DELETE /api/v1/admin/offices/{id}.
func (h *PortalHandler) AdminDeleteOffice(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteOffice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
