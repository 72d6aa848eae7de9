// stats.go — обработчик API статистики (stats-module).
// Каждый endpoint возвращает набор именованных серий вида
// {"<series>": [{"id","label","value"}, ...], ...}.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/apirvulescu/bureausys/internal/service"
)

// StatsHandler — обработчик API stats-module.
type StatsHandler struct {
	health *HealthHandler
	stats  *service.StatsService
	logger *slog.Logger
}

// NewStatsHandler создаёт обработчик API статистики.
func NewStatsHandler(health *HealthHandler, stats *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		health: health,
		stats:  stats,
		logger: logger.With(slog.String("component", "stats_handler")),
	}
}

// Health возвращает обработчик health endpoints.
func (h *StatsHandler) Health() *HealthHandler {
	return h.health
}

// BookStats — GET /api/v1/stats/books.
func (h *StatsHandler) BookStats(w http.ResponseWriter, r *http.Request) {
	series, err := h.stats.BookStats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// UserStats — GET /api/v1/stats/users.
func (h *StatsHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	series, err := h.stats.UserStats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// RevenueStats — GET /api/v1/stats/revenue.
func (h *StatsHandler) RevenueStats(w http.ResponseWriter, r *http.Request) {
	series, err := h.stats.RevenueStats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}
