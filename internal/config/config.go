// Пакет config — загрузка и валидация конфигурации MCP Sync Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации MCP Sync Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (диапазон 8010-8019)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Bearer-токен для доступа к /api/v1/*
	AdminToken string

	// --- PostgreSQL (БД хост-системы) ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string
	// Префикс таблиц хост-системы (по умолчанию "mdl_")
	DBTablePrefix string

	// --- Хост-система ---

	// Базовый URL хост-системы без trailing slash (moodleUrl при проверке лицензии)
	SiteURL string

	// --- Панель ключей ---

	// Базовый URL панели (по умолчанию https://moodlemcp.com)
	PanelURL string
	// Таймаут операций с ключами
	PanelTimeout time.Duration
	// Таймаут проверки лицензии
	LicenseTimeout time.Duration

	// --- Синхронизация и задачи ---

	// Cron-расписание плановой синхронизации
	SyncSchedule string
	// Интервал опроса очереди ad-hoc задач
	TaskPollInterval time.Duration
	// Максимальное число попыток выполнения ad-hoc задачи
	TaskMaxAttempts int
	// TTL кэша списка ключей панели
	KeyCacheTTL time.Duration
	// Размер кэша списка ключей панели
	KeyCacheSize int

	// --- SMTP ---

	// Хост SMTP-релея (пусто — отправка писем отключена)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	// Адрес отправителя (noreply)
	SMTPFrom string

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	ShutdownTimeout time.Duration
}

// tablePrefixRe — допустимый префикс таблиц (используется в SQL без экранирования).
var tablePrefixRe = regexp.MustCompile(`^[a-z0-9_]*$`)

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("MS_PORT", 8010)
	if err != nil {
		return nil, fmt.Errorf("MS_PORT: %w", err)
	}
	if cfg.Port < 8010 || cfg.Port > 8019 {
		return nil, fmt.Errorf("MS_PORT: значение %d вне допустимого диапазона 8010-8019", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("MS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("MS_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("MS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("MS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.AdminToken, err = getEnvRequired("MS_ADMIN_TOKEN")
	if err != nil {
		return nil, err
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("MS_DB_HOST")
	if err != nil {
		return nil, err
	}

	cfg.DBPort, err = getEnvInt("MS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("MS_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("MS_DB_NAME")
	if err != nil {
		return nil, err
	}

	cfg.DBUser, err = getEnvRequired("MS_DB_USER")
	if err != nil {
		return nil, err
	}

	cfg.DBPassword, err = getEnvRequired("MS_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("MS_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("MS_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// Пустой префикс допустим, поэтому os.LookupEnv, а не getEnvDefault
	cfg.DBTablePrefix = "mdl_"
	if v, ok := os.LookupEnv("MS_DB_TABLE_PREFIX"); ok {
		cfg.DBTablePrefix = v
	}
	if !tablePrefixRe.MatchString(cfg.DBTablePrefix) {
		return nil, fmt.Errorf("MS_DB_TABLE_PREFIX: недопустимое значение %q, допустимы [a-z0-9_]", cfg.DBTablePrefix)
	}

	// --- Хост-система ---

	cfg.SiteURL, err = getEnvRequired("MS_SITE_URL")
	if err != nil {
		return nil, err
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	// --- Панель ---

	cfg.PanelURL = strings.TrimRight(getEnvDefault("MS_PANEL_URL", "https://moodlemcp.com"), "/")
	if u, parseErr := url.Parse(cfg.PanelURL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("MS_PANEL_URL: некорректный URL %q", cfg.PanelURL)
	}

	cfg.PanelTimeout, err = getEnvDuration("MS_PANEL_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_PANEL_TIMEOUT: %w", err)
	}

	cfg.LicenseTimeout, err = getEnvDuration("MS_LICENSE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_LICENSE_TIMEOUT: %w", err)
	}

	// --- Синхронизация и задачи ---

	cfg.SyncSchedule = getEnvDefault("MS_SYNC_SCHEDULE", "0 * * * *")
	if _, err := cron.ParseStandard(cfg.SyncSchedule); err != nil {
		return nil, fmt.Errorf("MS_SYNC_SCHEDULE: некорректное cron-выражение %q: %w", cfg.SyncSchedule, err)
	}

	cfg.TaskPollInterval, err = getEnvDuration("MS_TASK_POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_TASK_POLL_INTERVAL: %w", err)
	}

	cfg.TaskMaxAttempts, err = getEnvInt("MS_TASK_MAX_ATTEMPTS", 5)
	if err != nil {
		return nil, fmt.Errorf("MS_TASK_MAX_ATTEMPTS: %w", err)
	}
	if cfg.TaskMaxAttempts < 1 || cfg.TaskMaxAttempts > 100 {
		return nil, fmt.Errorf("MS_TASK_MAX_ATTEMPTS: значение %d вне допустимого диапазона 1-100", cfg.TaskMaxAttempts)
	}

	cfg.KeyCacheTTL, err = getEnvDuration("MS_KEY_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_KEY_CACHE_TTL: %w", err)
	}

	cfg.KeyCacheSize, err = getEnvInt("MS_KEY_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("MS_KEY_CACHE_SIZE: %w", err)
	}
	if cfg.KeyCacheSize < 1 {
		return nil, fmt.Errorf("MS_KEY_CACHE_SIZE: значение %d должно быть положительным", cfg.KeyCacheSize)
	}

	// --- SMTP ---

	cfg.SMTPHost = getEnvDefault("MS_SMTP_HOST", "")
	cfg.SMTPPort, err = getEnvInt("MS_SMTP_PORT", 25)
	if err != nil {
		return nil, fmt.Errorf("MS_SMTP_PORT: %w", err)
	}
	cfg.SMTPUser = getEnvDefault("MS_SMTP_USER", "")
	cfg.SMTPPassword = getEnvDefault("MS_SMTP_PASSWORD", "")
	cfg.SMTPFrom = getEnvDefault("MS_SMTP_FROM", "noreply@localhost")

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("MS_DEPHEALTH_GROUP", "mcp-sync")
	cfg.DephealthCheckInterval, err = getEnvDuration("MS_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("MS_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("MS_SHUTDOWN_TIMEOUT: %w", err)
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

// DatabaseURL возвращает URL PostgreSQL без пароля (для лейблов topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// MailEnabled — настроен ли SMTP-релей.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
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
