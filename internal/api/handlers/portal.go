// portal.go — корневой обработчик API портала.
// Объединяет health и бизнес-обработчики, делегируя в сервисный слой.
package handlers

import (
	"log/slog"

	"github.com/apirvulescu/bureausys/internal/service"
)

// PortalHandler — обработчик API portal-module.
type PortalHandler struct {
	health      *HealthHandler
	auth        *service.AuthService
	enrollment  *service.EnrollmentService
	loaning     *service.LoaningService
	circulation *service.CirculationService
	admin       *service.AdminService
	logger      *slog.Logger
}

// NewPortalHandler создаёт обработчик API портала.
func NewPortalHandler(
	health *HealthHandler,
	auth *service.AuthService,
	enrollment *service.EnrollmentService,
	loaning *service.LoaningService,
	circulation *service.CirculationService,
	admin *service.AdminService,
	logger *slog.Logger,
) *PortalHandler {
	return &PortalHandler{
		health:      health,
		auth:        auth,
		enrollment:  enrollment,
		loaning:     loaning,
		circulation: circulation,
		admin:       admin,
		logger:      logger.With(slog.String("component", "portal_handler")),
	}
}

// Health возвращает обработчик health endpoints.
func (h *PortalHandler) Health() *HealthHandler {
	return h.health
}
