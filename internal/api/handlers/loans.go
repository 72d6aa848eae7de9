// loans.go — заявки на выдачу, возвраты и история выдач.
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/apirvulescu/bureausys/internal/api/errors"
	"github.com/apirvulescu/bureausys/internal/api/middleware"
	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/service"
)

// loanRequestBody — форма заявки на выдачу или возврата.
// citizenId опционален: гражданин берётся из claims, администратор
// может указать явно.
type loanRequestBody struct {
	CitizenID string `json:"citizenId"`
	Title     string `json:"title"`
	Author    string `json:"author"`
}

// resolveCitizenID подставляет CNP из claims, если форма его не задала.
func resolveCitizenID(r *http.Request, bodyCitizenID string) string {
	if bodyCitizenID != "" {
		return bodyCitizenID
	}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.CitizenID
	}
	return ""
}

// CreateLoan — POST /api/v1/loans.
// Ставит заявку в очередь отдела выдачи; ответ 202 — заявка принята,
// результат обработки в ответ не входит.
func (h *PortalHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var body loanRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}
	citizenID := resolveCitizenID(r, body.CitizenID)
	if citizenID == "" || strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.Author) == "" {
		apierrors.ValidationError(w, "Обязательные поля: citizenId (или сессия гражданина), title, author")
		return
	}

	err := h.loaning.Enqueue(service.LoanRequest{
		CitizenID: citizenID,
		Title:     body.Title,
		Author:    body.Author,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// returnResponse — результат возврата книги.
type returnResponse struct {
	Borrow *model.Borrow `json:"borrow"`
	Fee    *model.Fee    `json:"fee,omitempty"`
}

// Return — POST /api/v1/returns.
// Закрывает открытую выдачу; при просрочке в ответ входит начисленный штраф.
func (h *PortalHandler) Return(w http.ResponseWriter, r *http.Request) {
	var body loanRequestBody
	if !decodeJSON(w, r, &body) {
		return
	}
	citizenID := resolveCitizenID(r, body.CitizenID)
	if citizenID == "" || strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.Author) == "" {
		apierrors.ValidationError(w, "Обязательные поля: citizenId (или сессия гражданина), title, author")
		return
	}

	borrow, fee, err := h.circulation.Return(r.Context(), citizenID, body.Title, body.Author)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, returnResponse{Borrow: borrow, Fee: fee})
}

// ListBorrows — GET /api/v1/borrows?membership=<id>.
// История выдач билета для формы возврата.
func (h *PortalHandler) ListBorrows(w http.ResponseWriter, r *http.Request) {
	membershipID := r.URL.Query().Get("membership")
	if membershipID == "" {
		apierrors.ValidationError(w, "Обязательный параметр запроса: membership")
		return
	}

	borrows, err := h.circulation.Borrows(r.Context(), membershipID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if borrows == nil {
		borrows = []*model.Borrow{}
	}
	writeJSON(w, http.StatusOK, borrows)
}

// Enroll — POST /api/v1/enrollment.
// Оформляет читательский билет гражданину.
func (h *PortalHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CitizenID string `json:"citizenId"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	citizenID := resolveCitizenID(r, body.CitizenID)
	if citizenID == "" {
		apierrors.ValidationError(w, "Обязательное поле: citizenId (или сессия гражданина)")
		return
	}

	m, err := h.enrollment.Enroll(r.Context(), citizenID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMembership — GET /api/v1/memberships/{citizenId}.
// Действующий билет гражданина (автозаполнение форм).
func (h *PortalHandler) GetMembership(w http.ResponseWriter, r *http.Request) {
	citizenID := chi.URLParam(r, "citizenId")

	m, err := h.enrollment.MembershipByCitizen(r.Context(), citizenID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
