package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/billrate-system/backend/internal/api"
	"github.com/billrate-system/backend/internal/config"
	"github.com/billrate-system/backend/internal/session"
	"github.com/billrate-system/backend/internal/staging"
	"github.com/billrate-system/backend/internal/store"
	"github.com/billrate-system/backend/internal/timesheet"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env is optional; environment overrides are applied by the config loader.
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "billrate",
	})

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		exePath, err := os.Executable()
		if err != nil {
			logger.Fatal("failed to get executable path", "error", err)
		}
		configPath = filepath.Join(filepath.Dir(exePath), "billrate.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if level, err := log.ParseLevel(cfg.Advanced.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("failed to create directories", "error", err)
	}

	stagingStore, err := staging.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		logger.Fatal("failed to initialize staging area", "error", err)
	}

	billing, err := store.NewDuckStore(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open billing database", "error", err)
	}
	defer billing.Close()

	sessions := session.NewManager(time.Duration(cfg.Session.MaxAgeMinutes) * time.Minute)

	// Background session sweep.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Session.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if removed := sessions.Cleanup(); removed > 0 {
				logger.Debug("session cleanup", "removed", removed)
			}
		}
	}()

	deps := &api.Dependencies{
		Store:    billing,
		Staging:  stagingStore,
		Sessions: sessions,
		Checker: &timesheet.FileChecker{
			Staging:        stagingStore,
			RowChecks:      cfg.Validation.RowChecks,
			MaxCheckedRows: cfg.Validation.MaxCheckedRows,
		},
		Importer: &timesheet.Importer{
			Store:   billing,
			Staging: stagingStore,
			Log:     logger.With("component", "importer"),
		},
		Log:        logger,
		CookieName: cfg.Session.CookieName,
		SecureCook: cfg.Session.CookieSecure,
		Version:    Version,
	}

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			AllowCredentials: true,
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(deps), deps)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("starting server",
		"version", Version,
		"build_time", BuildTime,
		"addr", cfg.GetServerAddr(),
		"config", configPath,
		"database", cfg.Storage.DatabasePath,
		"staging", cfg.GetUploadDir(),
	)

	if err := e.StartServer(s); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server stopped", "error", err)
	}
}
