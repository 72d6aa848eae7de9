// metrics.go — Prometheus HTTP метрики.
// Регистрирует метрики: bs_http_requests_total, bs_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bs_http_requests_total",
			Help: "Общее количество HTTP-запросов",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bs_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			// (заменяем идентификаторы на {id} для предотвращения кардинальности)
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет идентификаторы в сегментах пути на {id}
// для предотвращения взрывного роста кардинальности метрик.
// /api/v1/books/b-123 → /api/v1/books/{id}
func normalizePath(path string) string {
	// Статические пути — возвращаем как есть
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/auth/signup",
		"/api/v1/auth/me",
		"/api/v1/books",
		"/api/v1/loans",
		"/api/v1/returns",
		"/api/v1/enrollment",
		"/api/v1/borrows",
		"/api/v1/fees",
		"/api/v1/fees/pay",
		"/api/v1/admin/books",
		"/api/v1/admin/citizens",
		"/api/v1/admin/memberships",
		"/api/v1/admin/borrows",
		"/api/v1/admin/counters",
		"/api/v1/admin/config",
		"/api/v1/stats/books",
		"/api/v1/stats/users",
		"/api/v1/stats/revenue":
		return path
	}

	// Динамические пути с идентификаторами
	prefixes := []struct {
		prefix string
		result string
	}{
		{"/api/v1/fees/", "/api/v1/fees/{id}"},
		{"/api/v1/memberships/", "/api/v1/memberships/{id}"},
		{"/api/v1/admin/books/", "/api/v1/admin/books/{id}"},
		{"/api/v1/admin/citizens/", "/api/v1/admin/citizens/{id}"},
		{"/api/v1/admin/memberships/", "/api/v1/admin/memberships/{id}"},
		{"/api/v1/admin/borrows/", "/api/v1/admin/borrows/{id}"},
		{"/api/v1/admin/fees/", "/api/v1/admin/fees/{id}"},
		{"/api/v1/admin/counters/", "/api/v1/admin/counters/{id}"},
		{"/api/v1/admin/offices/", "/api/v1/admin/offices/{id}"},
	}

	for _, p := range prefixes {
		if strings.HasPrefix(path, p.prefix) && len(path) > len(p.prefix) {
			rest := path[len(p.prefix):]
			// Сохраняем известные суффиксы действий после идентификатора
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				switch rest[i:] {
				case "/pause":
					return p.result + "/pause"
				case "/resume":
					return p.result + "/resume"
				}
			}
			return p.result
		}
	}

	return path
}
