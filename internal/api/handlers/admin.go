// admin.go — административный CRUD: книги, граждане, членства,
// выдачи и штрафы.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/apirvulescu/bureausys/internal/api/errors"
	"github.com/apirvulescu/bureausys/internal/domain/model"
	"github.com/apirvulescu/bureausys/internal/service"
)

// --- Книги ---

// AdminCreateBook — POST /api/v1/admin/books.
func (h *PortalHandler) AdminCreateBook(w http.ResponseWriter, r *http.Request) {
	var book model.Book
	if !decodeJSON(w, r, &book) {
		return
	}

	created, err := h.admin.CreateBook(r.Context(), &book)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// AdminListBooks — GET /api/v1/admin/books.
func (h *PortalHandler) AdminListBooks(w http.ResponseWriter, r *http.Request) {
	h.ListBooks(w, r)
}

// AdminGetBook — GET /api/v1/admin/books/{id}.
func (h *PortalHandler) AdminGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.admin.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// AdminUpdateBook — PATCH /api/v1/admin/books/{id}.
// Частичное обновление полей книги.
func (h *PortalHandler) AdminUpdateBook(w http.ResponseWriter, r *http.Request) {
	var patch service.BookPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	book, err := h.admin.UpdateBook(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// AdminDeleteBook — DELETE /api/v1/admin/books/{id}.
func (h *PortalHandler) AdminDeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteBook(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Граждане и членства ---

// AdminCreateCitizen — POST /api/v1/admin/citizens.
func (h *PortalHandler) AdminCreateCitizen(w http.ResponseWriter, r *http.Request) {
	var citizen model.Citizen
	if !decodeJSON(w, r, &citizen) {
		return
	}

	created, err := h.admin.CreateCitizen(r.Context(), &citizen)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// AdminListCitizens — GET /api/v1/admin/citizens.
func (h *PortalHandler) AdminListCitizens(w http.ResponseWriter, r *http.Request) {
	citizens, err := h.admin.ListCitizens(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if citizens == nil {
		citizens = []*model.Citizen{}
	}
	writeJSON(w, http.StatusOK, citizens)
}

// AdminGetCitizen — GET /api/v1/admin/citizens/{id}.
func (h *PortalHandler) AdminGetCitizen(w http.ResponseWriter, r *http.Request) {
	citizen, err := h.admin.GetCitizen(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, citizen)
}

// AdminUpdateCitizen — PATCH /api/v1/admin/citizens/{id}.
func (h *PortalHandler) AdminUpdateCitizen(w http.ResponseWriter, r *http.Request) {
	var patch service.CitizenPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	citizen, err := h.admin.UpdateCitizen(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, citizen)
}

// AdminDeleteCitizen — DELETE /api/v1/admin/citizens/{id}.
func (h *PortalHandler) AdminDeleteCitizen(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteCitizen(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminListMemberships — GET /api/v1/admin/memberships.
func (h *PortalHandler) AdminListMemberships(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.admin.ListMemberships(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if memberships == nil {
		memberships = []*model.Membership{}
	}
	writeJSON(w, http.StatusOK, memberships)
}

// AdminUpdateMembership — PATCH /api/v1/admin/memberships/{id}.
// Включение/отключение читательского билета.
func (h *PortalHandler) AdminUpdateMembership(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active *bool `json:"active"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Active == nil {
		apierrors.ValidationError(w, "Обязательное поле: active")
		return
	}

	if err := h.admin.SetMembershipActive(r.Context(), chi.URLParam(r, "id"), *body.Active); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Выдачи и штрафы ---

// AdminCreateBorrow — POST /api/v1/admin/borrows.
func (h *PortalHandler) AdminCreateBorrow(w http.ResponseWriter, r *http.Request) {
	var borrow model.Borrow
	if !decodeJSON(w, r, &borrow) {
		return
	}

	created, err := h.admin.CreateBorrow(r.Context(), &borrow)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// AdminListBorrows — GET /api/v1/admin/borrows.
func (h *PortalHandler) AdminListBorrows(w http.ResponseWriter, r *http.Request) {
	borrows, err := h.admin.ListBorrows(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if borrows == nil {
		borrows = []*model.Borrow{}
	}
	writeJSON(w, http.StatusOK, borrows)
}

// AdminUpdateBorrow — PATCH /api/v1/admin/borrows/{id}.
func (h *PortalHandler) AdminUpdateBorrow(w http.ResponseWriter, r *http.Request) {
	var patch service.BorrowPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	borrow, err := h.admin.UpdateBorrow(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, borrow)
}

// AdminUpdateFee — PATCH /api/v1/admin/fees/{id}.
func (h *PortalHandler) AdminUpdateFee(w http.ResponseWriter, r *http.Request) {
	var patch service.FeePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	fee, err := h.admin.UpdateFee(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, fee)
}

// AdminDeleteFee — DELETE /api/v1/admin/fees/{id}.
func (h *PortalHandler) AdminDeleteFee(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteFee(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
