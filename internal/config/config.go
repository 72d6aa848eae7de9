// Пакет config — загрузка и валидация конфигурации сервисов
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Portal Module и Stats Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймаут чтения запроса HTTP-сервером
	HTTPReadTimeout time.Duration
	// Таймаут записи ответа HTTP-сервером
	HTTPWriteTimeout time.Duration
	// Таймаут простоя keep-alive соединений
	HTTPIdleTimeout time.Duration

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Максимальный размер пула подключений (0 — значение по умолчанию pgx)
	DBMaxConns int

	// --- Identity Provider ---

	// URL Identity Provider (например, https://idp.primaria.lan)
	IDPURL string
	// Имя realm в Identity Provider
	IDPRealm string
	// Client ID для доступа к Admin API Identity Provider
	IDPClientID string
	// Client Secret для доступа к Admin API Identity Provider
	IDPClientSecret string
	// Опциональный путь к CA-сертификату для TLS к Identity Provider
	IDPCACertPath string

	// --- JWT ---

	// Issuer JWT (авто-вычисляется из IDPURL, если не задан)
	JWTIssuer string
	// URL JWKS endpoint (авто-вычисляется из IDPURL, если не задан)
	JWTJWKSURL string
	// Допустимый сдвиг часов при проверке exp/nbf
	JWTLeeway time.Duration

	// --- Обслуживание выдачи книг ---

	// Количество окон обслуживания (воркеров очереди выдачи)
	CounterCount int
	// Размер буфера очереди заявок на выдачу
	LoanQueueSize int
	// Срок займа книги (по умолчанию 30 дней)
	LoanPeriod time.Duration
	// Штраф за день просрочки
	OverdueFeePerDay float64

	// --- Кеш статистики ---

	// Максимальное число записей в LRU-кеше статистики
	StatsCacheSize int
	// TTL записей кеша статистики
	StatsCacheTTL time.Duration

	// --- Мониторинг зависимостей ---

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics
	DephealthGroup string

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// BS_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("BS_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("BS_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("BS_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// BS_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("BS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("BS_LOG_LEVEL: %w", err)
	}

	// BS_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("BS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("BS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// BS_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("BS_DB_HOST")
	if err != nil {
		return nil, err
	}

	// BS_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("BS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("BS_DB_PORT: %w", err)
	}

	// BS_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("BS_DB_NAME")
	if err != nil {
		return nil, err
	}

	// BS_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("BS_DB_USER")
	if err != nil {
		return nil, err
	}

	// BS_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("BS_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// BS_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("BS_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("BS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// BS_DB_MAX_CONNS — размер пула (0 — значение по умолчанию pgx)
	cfg.DBMaxConns, err = getEnvInt("BS_DB_MAX_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("BS_DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns < 0 {
		return nil, fmt.Errorf("BS_DB_MAX_CONNS: значение %d не может быть отрицательным", cfg.DBMaxConns)
	}

	// --- Identity Provider ---

	// BS_IDP_URL — обязательный
	cfg.IDPURL, err = getEnvRequired("BS_IDP_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.IDPURL = strings.TrimRight(cfg.IDPURL, "/")

	// BS_IDP_REALM — realm (по умолчанию primaria)
	cfg.IDPRealm = getEnvDefault("BS_IDP_REALM", "primaria")

	// BS_IDP_CLIENT_ID — client для Admin API (по умолчанию portal-module)
	cfg.IDPClientID = getEnvDefault("BS_IDP_CLIENT_ID", "portal-module")

	// BS_IDP_CLIENT_SECRET — обязательный
	cfg.IDPClientSecret, err = getEnvRequired("BS_IDP_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}

	// BS_IDP_CA_CERT — опциональный CA-сертификат для TLS к IdP
	cfg.IDPCACertPath = getEnvDefault("BS_IDP_CA_CERT", "")

	// --- JWT ---

	// BS_JWT_ISSUER — авто-вычисляется из IDPURL, если не задан
	cfg.JWTIssuer = getEnvDefault("BS_JWT_ISSUER",
		fmt.Sprintf("%s/realms/%s", cfg.IDPURL, cfg.IDPRealm))

	// BS_JWT_JWKS_URL — авто-вычисляется из IDPURL, если не задан
	cfg.JWTJWKSURL = getEnvDefault("BS_JWT_JWKS_URL",
		fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", cfg.IDPURL, cfg.IDPRealm))

	// BS_JWT_LEEWAY — сдвиг часов (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("BS_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BS_JWT_LEEWAY: %w", err)
	}

	// --- Обслуживание выдачи книг ---

	// BS_COUNTERS — конфигурация окон: либо число, либо строка "counters=<число>"
	// (формат файла конфигурации, по умолчанию 2)
	cfg.CounterCount, err = parseCounters(getEnvDefault("BS_COUNTERS", "2"))
	if err != nil {
		return nil, fmt.Errorf("BS_COUNTERS: %w", err)
	}

	// BS_LOAN_QUEUE_SIZE — размер очереди заявок (по умолчанию 256)
	cfg.LoanQueueSize, err = getEnvInt("BS_LOAN_QUEUE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("BS_LOAN_QUEUE_SIZE: %w", err)
	}
	if cfg.LoanQueueSize < 1 {
		return nil, fmt.Errorf("BS_LOAN_QUEUE_SIZE: значение %d должно быть >= 1", cfg.LoanQueueSize)
	}

	// BS_LOAN_PERIOD — срок займа (по умолчанию 720h = 30 дней)
	cfg.LoanPeriod, err = getEnvDuration("BS_LOAN_PERIOD", 30*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("BS_LOAN_PERIOD: %w", err)
	}

	// BS_OVERDUE_FEE_PER_DAY — штраф за день просрочки (по умолчанию 1.0)
	cfg.OverdueFeePerDay, err = getEnvFloat("BS_OVERDUE_FEE_PER_DAY", 1.0)
	if err != nil {
		return nil, fmt.Errorf("BS_OVERDUE_FEE_PER_DAY: %w", err)
	}
	if cfg.OverdueFeePerDay < 0 {
		return nil, fmt.Errorf("BS_OVERDUE_FEE_PER_DAY: значение %v не может быть отрицательным", cfg.OverdueFeePerDay)
	}

	// --- Кеш статистики ---

	// BS_STATS_CACHE_SIZE — размер LRU-кеша (по умолчанию 128)
	cfg.StatsCacheSize, err = getEnvInt("BS_STATS_CACHE_SIZE", 128)
	if err != nil {
		return nil, fmt.Errorf("BS_STATS_CACHE_SIZE: %w", err)
	}
	if cfg.StatsCacheSize < 1 {
		return nil, fmt.Errorf("BS_STATS_CACHE_SIZE: значение %d должно быть >= 1", cfg.StatsCacheSize)
	}

	// BS_STATS_CACHE_TTL — TTL кеша (по умолчанию 1m)
	cfg.StatsCacheTTL, err = getEnvDuration("BS_STATS_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("BS_STATS_CACHE_TTL: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// BS_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("BS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// BS_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию bureausys)
	cfg.DephealthGroup = getEnvDefault("BS_DEPHEALTH_GROUP", "bureausys")

	// --- Таймауты HTTP-сервера ---

	// BS_HTTP_READ_TIMEOUT — таймаут чтения запроса (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("BS_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BS_HTTP_READ_TIMEOUT: %w", err)
	}

	// BS_HTTP_WRITE_TIMEOUT — таймаут записи ответа (по умолчанию 30s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("BS_HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BS_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// BS_HTTP_IDLE_TIMEOUT — таймаут простоя соединений (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("BS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BS_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- Graceful shutdown ---

	// BS_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("BS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BS_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL
// (для topologymetrics: лейблы зависимости строятся из URL).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// parseCounters разбирает конфигурацию окон обслуживания.
// Принимает либо число ("4"), либо строку формата "counters=4".
func parseCounters(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, ok := strings.CutPrefix(s, "counters="); ok {
		s = strings.TrimSpace(v)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("некорректное число окон: %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("число окон %d должно быть >= 1", n)
	}
	return n, nil
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvFloat возвращает вещественное значение переменной окружения или значение по умолчанию.
func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное вещественное число: %q", val)
	}
	return f, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
