// dephealth.go — мониторинг зависимостей через topologymetrics SDK.
//
// Оба модуля мониторят две зависимости:
//   - PostgreSQL — SQL checker через существующий pgxpool (pool mode, critical)
//   - Identity Provider — HTTP checker к JWKS endpoint (critical)
//
// Метрики публикуются на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для IdP
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"     // PostgreSQL checker (pool mode)
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthService — сервис мониторинга зависимостей.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
//
// PostgreSQL проверяется через *sql.DB, полученный из pgxpool
// (stdlib.OpenDBFromPool): проверка отражает реальное состояние пула
// соединений и может обнаружить его исчерпание.
//
// Параметры:
//   - serviceID — имя вершины графа текущего приложения (portal-module / stats-module)
//   - group — имя группы в метриках
//   - db — *sql.DB поверх pgxpool
//   - pgConnURL — URL подключения к PostgreSQL (для лейблов, не для подключения)
//   - idpJWKSURL — URL JWKS endpoint Identity Provider
//   - checkInterval — интервал проверки (BS_DEPHEALTH_CHECK_INTERVAL)
func NewDephealthService(
	serviceID string,
	group string,
	db *sql.DB,
	pgConnURL string,
	idpJWKSURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, db, pgConnURL, idpJWKSURL, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus
// registerer. Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	db *sql.DB,
	pgConnURL string,
	idpJWKSURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, db, pgConnURL, idpJWKSURL, checkInterval, logger,
		dephealth.WithRegisterer(registerer))
}

func newDephealthService(
	serviceID string,
	group string,
	db *sql.DB,
	pgConnURL string,
	idpJWKSURL string,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	idpHealthPath := idpHealthPathFromURL(idpJWKSURL)

	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		// PostgreSQL — pool mode через существующий pgxpool.
		// pgcheck.New + AddDependency напрямую, чтобы не тянуть contrib/sqldb
		// с транзитивной зависимостью на MySQL.
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(db)),
			dephealth.FromURL(pgConnURL),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
		),
		// Identity Provider — HTTP checker к JWKS endpoint
		dephealth.HTTP("idp-jwks",
			dephealth.FromURL(idpJWKSURL),
			dephealth.WithHTTPHealthPath(idpHealthPath),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
			dephealth.WithHTTPTLSSkipVerify(true), // Dev-среда: self-signed сертификаты
		),
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (PostgreSQL + IdP)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}

// idpHealthPathFromURL выбирает path для HTTP-проверки IdP.
// По умолчанию dephealth проверяет /health, но у IdP этот endpoint живёт
// на management-порту. Используем path самого JWKS URL — успешный ответ
// подтверждает доступность realm и OIDC endpoints.
func idpHealthPathFromURL(jwksURL string) string {
	parsed, err := url.Parse(jwksURL)
	if err != nil || parsed.Path == "" {
		return "/health"
	}
	return parsed.Path
}
