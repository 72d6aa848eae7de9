// Точка входа Stats Module — модуль статистики системы Bureausys.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт сервис агрегации с LRU-кэшем, запускает topologymetrics,
// HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/apirvulescu/bureausys/internal/api/handlers"
	"github.com/apirvulescu/bureausys/internal/api/middleware"
	"github.com/apirvulescu/bureausys/internal/config"
	"github.com/apirvulescu/bureausys/internal/database"
	"github.com/apirvulescu/bureausys/internal/repository"
	"github.com/apirvulescu/bureausys/internal/server"
	"github.com/apirvulescu/bureausys/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Stats Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("BS_DEPHEALTH_GROUP") == "" {
		logger.Warn("BS_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД.
	// Миграции идемпотентны: при одновременном старте с Portal Module
	// выигравший применяет, второй видит актуальную версию.
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

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories (только чтение)
	userRepo := repository.NewUserRepository(pool)
	citizenRepo := repository.NewCitizenRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	bookRepo := repository.NewBookRepository(pool)
	borrowRepo := repository.NewBorrowRepository(pool)
	feeRepo := repository.NewFeeRepository(pool)

	// 6. Кэш агрегатов и сервис статистики
	cacheSvc := service.NewCacheService(cfg.StatsCacheSize, cfg.StatsCacheTTL)
	statsSvc := service.NewStatsService(
		bookRepo, borrowRepo, feeRepo, citizenRepo, membershipRepo,
		cacheSvc,
		logger,
	)
	logger.Info("Кэш агрегатов инициализирован",
		slog.Int("size", cfg.StatsCacheSize),
		slog.String("ttl", cfg.StatsCacheTTL.String()),
	)

	// 7. Readiness checkers (PostgreSQL + IdP)
	pgChecker := database.NewReadinessChecker(pool)
	idpChecker, err := middleware.NewIDPReadinessChecker(cfg.JWTJWKSURL, cfg.IDPCACertPath, 5*time.Second)
	if err != nil {
		logger.Error("Ошибка создания IdP readiness checker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	healthHandler := handlers.NewHealthHandler("stats-module", pgChecker, idpChecker)

	// 8. API handler
	statsHandler := handlers.NewStatsHandler(healthHandler, statsSvc, logger)

	// 9. JWT middleware (дашборды доступны только администраторам)
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

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL + IdP)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"stats-module",
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

	// 11. Маршрутизатор и HTTP-сервер
	router := server.StatsRouter(
		statsHandler,
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
