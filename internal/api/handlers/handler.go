// handler.go — общие помощники обработчиков API.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apierrors "github.com/apirvulescu/bureausys/internal/api/errors"
	"github.com/apirvulescu/bureausys/internal/service"
)

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON десериализует тело запроса; ошибка формата — 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return false
	}
	return true
}

// paginationDefaults нормализует limit/offset из query-параметров.
func paginationDefaults(r *http.Request) (limit, offset int) {
	limit = 100
	offset = 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			offset = v
		}
	}

	if limit < 1 {
		limit = 1
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// writeServiceError транслирует ошибки сервисного слоя в HTTP-ответы.
// Сообщение сентинелей уходит клиенту как есть; прочие ошибки — 500 с логом.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotEnrolled):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrAlreadyEnrolled),
		errors.Is(err, service.ErrAlreadyBorrowed),
		errors.Is(err, service.ErrBookUnavailable):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrIDPUnavailable):
		apierrors.IDPUnavailable(w, err.Error())
	case errors.Is(err, service.ErrQueueFull):
		apierrors.WriteError(w, http.StatusServiceUnavailable, apierrors.CodeUnavailable, err.Error())
	default:
		logger.Error("Внутренняя ошибка обработки запроса", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
