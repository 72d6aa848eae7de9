// Точка входа Portal Module — портал-модуль системы Bureausys.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует IdP-клиент, создаёт сервисный слой и API handlers,
// запускает окна обслуживания (конвейер выдачи), topologymetrics,
// HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/apirvulescu/bureausys/internal/api/handlers"
	"github.com/apirvulescu/bureausys/internal/api/middleware"
	"github.com/apirvulescu/bureausys/internal/config"
	"github.com/apirvulescu/bureausys/internal/database"
	"github.com/apirvulescu/bureausys/internal/idp"
	"github.com/apirvulescu/bureausys/internal/repository"
	"github.com/apirvulescu/bureausys/internal/server"
	"github.com/apirvulescu/bureausys/internal/service"
)

// loanDepartment — подразделение, к которому относятся окна обслуживания.
const loanDepartment = "library"

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Portal Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("BS_DEPHEALTH_GROUP") == "" {
		logger.Warn("BS_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. HTTP-клиент с кастомным CA (для IdP)
	var httpClientCA *http.Client
	if cfg.IDPCACertPath != "" {
		httpClientCA, err = buildHTTPClientWithCA(cfg.IDPCACertPath)
		if err != nil {
			logger.Error("Ошибка загрузки CA-сертификата", slog.String("path", cfg.IDPCACertPath), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("CA-сертификат загружен", slog.String("path", cfg.IDPCACertPath))
	}

	// 6. IdP Admin API клиент
	idpClient := idp.New(
		cfg.IDPURL,
		cfg.IDPRealm,
		cfg.IDPClientID,
		cfg.IDPClientSecret,
		httpClientCA, // nil — стандартный пул CA
		logger,
	)
	logger.Info("IdP клиент создан",
		slog.String("url", cfg.IDPURL),
		slog.String("realm", cfg.IDPRealm),
	)

	// 7. Repositories
	userRepo := repository.NewUserRepository(pool)
	citizenRepo := repository.NewCitizenRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	bookRepo := repository.NewBookRepository(pool)
	borrowRepo := repository.NewBorrowRepository(pool)
	feeRepo := repository.NewFeeRepository(pool)
	counterRepo := repository.NewCounterRepository(pool)
	officeRepo := repository.NewOfficeRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 8. Services
	authSvc := service.NewAuthService(idpClient, txRunner, userRepo, citizenRepo, logger)
	enrollmentSvc := service.NewEnrollmentService(membershipRepo, citizenRepo, logger)
	circulationSvc := service.NewCirculationService(
		txRunner, membershipRepo, bookRepo, borrowRepo, feeRepo,
		cfg.OverdueFeePerDay,
		logger,
	)
	loaningSvc := service.NewLoaningService(
		txRunner, counterRepo, membershipRepo, bookRepo,
		loanDepartment,
		cfg.CounterCount,
		cfg.LoanQueueSize,
		cfg.LoanPeriod,
		logger,
	)
	adminSvc := service.NewAdminService(
		bookRepo, citizenRepo, membershipRepo, borrowRepo, feeRepo, officeRepo,
		logger,
	)

	// 9. Запуск окон обслуживания (сброс состояния + воркеры очереди выдачи)
	if err := loaningSvc.Start(ctx); err != nil {
		logger.Error("Ошибка запуска окон обслуживания", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer loaningSvc.Stop()
	logger.Info("Окна обслуживания запущены",
		slog.Int("counters", cfg.CounterCount),
		slog.Int("queue_size", cfg.LoanQueueSize),
	)

	// 10. Readiness checkers (PostgreSQL + IdP)
	pgChecker := database.NewReadinessChecker(pool)
	idpChecker, err := middleware.NewIDPReadinessChecker(cfg.JWTJWKSURL, cfg.IDPCACertPath, 5*time.Second)
	if err != nil {
		logger.Error("Ошибка создания IdP readiness checker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	healthHandler := handlers.NewHealthHandler("portal-module", pgChecker, idpChecker)

	// 11. API handler
	portalHandler := handlers.NewPortalHandler(
		healthHandler,
		authSvc,
		enrollmentSvc,
		loaningSvc,
		circulationSvc,
		adminSvc,
		logger,
	)

	// 12. JWT middleware (роль берётся из локальной таблицы users по sub)
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.IDPCACertPath,
		cfg.JWTIssuer,
		userRepo,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer jwtAuth.Close()
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 13. topologymetrics — мониторинг зависимостей (PostgreSQL + IdP)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"portal-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.JWTJWKSURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 14. Маршрутизатор и HTTP-сервер
	router := server.PortalRouter(
		portalHandler,
		jwtAuth,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	srv := server.New(cfg, logger, router)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка HTTP-сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildHTTPClientWithCA создаёт HTTP-клиент с добавленным CA-сертификатом.
func buildHTTPClientWithCA(caCertPath string) (*http.Client, error) {
	caCert, err := os.ReadFile(caCertPath)
	if err != nil {
		return nil, fmt.Errorf("чтение CA-сертификата: %w", err)
	}

	certPool, err := x509.SystemCertPool()
	if err != nil {
		certPool = x509.NewCertPool()
	}
	if !certPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("CA-сертификат %s не содержит валидных PEM-блоков", caCertPath)
	}

	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: certPool,
			},
		},
	}, nil
}
