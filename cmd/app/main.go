package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/smartfixosapp/smartfixos/cmd"
	httpin "github.com/smartfixosapp/smartfixos/internal/adapters/in/http"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres/eventrepo"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres/paymentrepo"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres/staffrepo"
	"github.com/smartfixosapp/smartfixos/internal/adapters/out/postgres/workorderrepo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := getConfig(logger)

	gormDB, err := openDatabase(config)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := migrateDatabase(gormDB); err != nil {
		logger.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	app, err := cmd.NewCompositionRoot(config, gormDB, logger)
	if err != nil {
		logger.Error("composition failed", "error", err)
		os.Exit(1)
	}

	startWebServer(app, config, logger)
}

func getConfig(logger *slog.Logger) cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		logger.Info("no .env file, using process environment")
	}

	return cmd.Config{
		HTTPPort:   envOrDefault("HTTP_PORT", "8080"),
		DBHost:     envOrDefault("DB_HOST", "localhost"),
		DBPort:     envOrDefault("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSslMode:  envOrDefault("DB_SSLMODE", "disable"),

		TaxRate:           envFloat(logger, "TAX_RATE", 0.115),
		EmailSkipStatuses: envList("EMAIL_SKIP_STATUSES"),
		SideEffectTimeout: envDuration(logger, "SIDE_EFFECT_TIMEOUT", 10*time.Second),

		EmailFromName: envOrDefault("EMAIL_FROM_NAME", "SmartFixOS"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      envInt(logger, "SMTP_PORT", 587),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),

		JWTSecret:            os.Getenv("JWT_SECRET"),
		NoteDeleteSecretHash: os.Getenv("NOTE_DELETE_SECRET_HASH"),
		DeviceSecretKey:      os.Getenv("DEVICE_SECRET_KEY"),

		EventCacheTTL:            envDuration(logger, "EVENT_CACHE_TTL", 5*time.Minute),
		AllowItemEditsAfterClose: envBool(logger, "ALLOW_ITEM_EDITS_AFTER_CLOSE", false),
	}
}

func openDatabase(config cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.DBHost, config.DBUser, config.DBPassword,
		config.DBName, config.DBPort, config.DBSslMode)
	return gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
}

func migrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(
		&workorderrepo.WorkOrderDTO{},
		&workorderrepo.LineItemDTO{},
		&workorderrepo.StatusHistoryDTO{},
		&eventrepo.WorkOrderEventDTO{},
		&paymentrepo.PaymentDTO{},
		&staffrepo.StaffAccountDTO{},
		&staffrepo.CustomerDTO{},
		&staffrepo.NotificationDTO{},
	)
}

func startWebServer(app *cmd.CompositionRoot, config cmd.Config, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = httpin.NewRequestValidator()

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	server := app.CreateServer()
	server.RegisterRoutes(e, app.CreateAuthenticator())

	jobManager := app.CreateJobManager(logger)
	if err := jobManager.StartAll(); err != nil {
		logger.Error("job manager start failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); err != nil &&
			err != http.ErrServerClosed {
			logger.Error("http server stopped", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	jobManager.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	// Let in-flight notifications finish before the process exits.
	app.Wait(15 * time.Second)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envInt(logger *slog.Logger, key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid integer env var, using default", "key", key, "value", raw)
		return fallback
	}
	return v
}

func envFloat(logger *slog.Logger, key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("invalid float env var, using default", "key", key, "value", raw)
		return fallback
	}
	return v
}

func envBool(logger *slog.Logger, key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("invalid boolean env var, using default", "key", key, "value", raw)
		return fallback
	}
	return v
}

func envDuration(logger *slog.Logger, key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("invalid duration env var, using default", "key", key, "value", raw)
		return fallback
	}
	return v
}
