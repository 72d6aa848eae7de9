// routes.go — сборка маршрутов portal-module и stats-module.
//
// Публичные пути (health, metrics, регистрация, каталог книг) исключены
// из JWT middleware; остальные требуют аутентификации, ветка /admin —
// роль admin. Решение о доступе принимается на каждом запросе заново.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apirvulescu/bureausys/internal/api/handlers"
	"github.com/apirvulescu/bureausys/internal/api/middleware"
	"github.com/apirvulescu/bureausys/internal/domain/rbac"
)

// publicPrefixes — пути portal-module, доступные без токена.
var publicPrefixes = []string{
	"/health/",
	"/metrics",
	"/api/v1/auth/signup",
	"/api/v1/books",
}

// PortalRouter собирает роутер portal-module: metrics → request logger →
// JWT (с исключениями) → маршруты с ролевыми проверками.
func PortalRouter(h *handlers.PortalHandler, auth *middleware.JWTAuth, extra ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range extra {
		r.Use(mw)
	}
	r.Use(JWTAuthWithExclusions(auth.Middleware(), publicPrefixes...))

	r.Get("/health/live", h.Health().HealthLive)
	r.Get("/health/ready", h.Health().HealthReady)
	r.Get("/metrics", h.Health().GetMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		// Публичные endpoints
		r.Post("/auth/signup", h.Signup)
		r.Get("/books", h.ListBooks)

		// Аутентифицированные endpoints (любая действительная роль)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole())

			r.Get("/auth/me", h.Me)
			r.Post("/loans", h.CreateLoan)
			r.Post("/returns", h.Return)
			r.Post("/enrollment", h.Enroll)
			r.Get("/borrows", h.ListBorrows)
			r.Get("/memberships/{citizenId}", h.GetMembership)
			r.Get("/fees", h.ListFees)
			r.Get("/fees/{borrowId}", h.GetFee)
			r.Post("/fees/pay", h.PayFee)
		})

		// Административные endpoints
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(rbac.RoleAdmin))

			r.Post("/books", h.AdminCreateBook)
			r.Get("/books", h.AdminListBooks)
			r.Get("/books/{id}", h.AdminGetBook)
			r.Patch("/books/{id}", h.AdminUpdateBook)
			r.Delete("/books/{id}", h.AdminDeleteBook)

			r.Post("/citizens", h.AdminCreateCitizen)
			r.Get("/citizens", h.AdminListCitizens)
			r.Get("/citizens/{id}", h.AdminGetCitizen)
			r.Patch("/citizens/{id}", h.AdminUpdateCitizen)
			r.Delete("/citizens/{id}", h.AdminDeleteCitizen)

			r.Get("/memberships", h.AdminListMemberships)
			r.Patch("/memberships/{id}", h.AdminUpdateMembership)

			r.Post("/borrows", h.AdminCreateBorrow)
			r.Get("/borrows", h.AdminListBorrows)
			r.Patch("/borrows/{id}", h.AdminUpdateBorrow)

			r.Patch("/fees/{id}", h.AdminUpdateFee)
			r.Delete("/fees/{id}", h.AdminDeleteFee)

			r.Get("/counters", h.AdminListCounters)
			r.Post("/counters/{id}/pause", h.AdminPauseCounter)
			r.Post("/counters/{id}/resume", h.AdminResumeCounter)

			r.Post("/config", h.AdminSaveConfig)
			r.Get("/config", h.AdminGetConfig)
			r.Delete("/offices/{id}", h.AdminDeleteOffice)
		})
	})

	return r
}

// statsPublicPrefixes — пути stats-module, доступные без токена.
var statsPublicPrefixes = []string{
	"/health/",
	"/metrics",
}

// StatsRouter собирает роутер stats-module. Дашборды закрыты ролью admin.
func StatsRouter(h *handlers.StatsHandler, auth *middleware.JWTAuth, extra ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range extra {
		r.Use(mw)
	}
	r.Use(JWTAuthWithExclusions(auth.Middleware(), statsPublicPrefixes...))

	r.Get("/health/live", h.Health().HealthLive)
	r.Get("/health/ready", h.Health().HealthReady)
	r.Get("/metrics", h.Health().GetMetrics)

	r.Route("/api/v1/stats", func(r chi.Router) {
		r.Use(middleware.RequireRole(rbac.RoleAdmin))

		r.Get("/books", h.BookStats)
		r.Get("/users", h.UserStats)
		r.Get("/revenue", h.RevenueStats)
	})

	return r
}
