// books.go — публичный каталог книг.
package handlers

import (
	"net/http"

	"github.com/apirvulescu/bureausys/internal/domain/model"
)

// bookListResponse — страница каталога.
type bookListResponse struct {
	Items  []*model.Book `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ListBooks — GET /api/v1/books (публичный).
// Каталог с флагом доступности для формы заявки на выдачу.
func (h *PortalHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationDefaults(r)

	books, total, err := h.admin.ListBooks(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if books == nil {
		books = []*model.Book{}
	}
	writeJSON(w, http.StatusOK, bookListResponse{
		Items:  books,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
