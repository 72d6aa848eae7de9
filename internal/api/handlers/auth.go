// auth.go — регистрация граждан и данные текущей сессии.
package handlers

import (
	"net/http"

	apierrors "github.com/apirvulescu/bureausys/internal/api/errors"
	"github.com/apirvulescu/bureausys/internal/api/middleware"
	"github.com/apirvulescu/bureausys/internal/service"
)

// Signup — POST /api/v1/auth/signup (публичный).
// Регистрирует гражданина: учётная запись IdP + локальный профиль.
func (h *PortalHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Me — GET /api/v1/auth/me.
// Возвращает ролевой документ текущей сессии.
func (h *PortalHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Требуется аутентификация")
		return
	}

	user, err := h.auth.Me(r.Context(), claims.Subject)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
