// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/billrate-system/backend/internal/session"
	"github.com/billrate-system/backend/internal/staging"
	"github.com/billrate-system/backend/internal/store"
	"github.com/billrate-system/backend/internal/timesheet"
)

// Dependencies holds all handler dependencies.
type Dependencies struct {
	Store      store.BillingStore
	Staging    staging.Store
	Sessions   *session.Manager
	Checker    *timesheet.FileChecker
	Importer   *timesheet.Importer
	Log        *log.Logger
	CookieName string
	SecureCook bool
	Version    string
}

// Handlers holds all handler instances.
type Handlers struct {
	Health    HealthHandler
	Auth      AuthHandler
	Upload    UploadHandler
	Invoice   InvoiceHandler
	Project   ProjectHandler
	Timesheet TimesheetHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version),
		Auth:      NewAuthHandler(deps.Store, deps.Sessions, deps.CookieName, deps.SecureCook),
		Upload:    NewUploadHandler(deps.Store, deps.Sessions, deps.Checker, deps.Importer, deps.Log),
		Invoice:   NewInvoiceHandler(deps.Sessions),
		Project:   NewProjectHandler(deps.Store),
		Timesheet: NewTimesheetHandler(deps.Store),
	}
}

// RegisterRoutes registers all API routes with the Echo instance.
// Everything except health and the auth entry points sits behind the
// login middleware.
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health", handlers.Health.HandleHealth)

	authGroup := e.Group("/api/auth")
	authGroup.POST("/register", handlers.Auth.HandleRegister)
	authGroup.POST("/login", handlers.Auth.HandleLogin)
	authGroup.POST("/logout", handlers.Auth.HandleLogout)

	requireLogin := RequireLogin(deps.Sessions, deps.CookieName)
	authGroup.GET("/me", handlers.Auth.HandleCurrentUser, requireLogin)

	fileGroup := e.Group("/api/files", requireLogin)
	fileGroup.POST("/upload", handlers.Upload.HandleUploadFile)
	fileGroup.POST("/process", handlers.Upload.HandleProcessFile)

	invoiceGroup := e.Group("/api/invoices", requireLogin)
	invoiceGroup.GET("", handlers.Invoice.HandleListInvoiceProjects)
	invoiceGroup.GET("/export/msgpack", handlers.Invoice.HandleExportInvoicesMsgpack)
	invoiceGroup.GET("/:project", handlers.Invoice.HandleGetInvoice)
	invoiceGroup.GET("/:project/export/xlsx", handlers.Invoice.HandleExportInvoiceXLSX)

	projectGroup := e.Group("/api/projects", requireLogin)
	projectGroup.GET("", handlers.Project.HandleListProjects)
	projectGroup.POST("", handlers.Project.HandleAddProject)
	projectGroup.PUT("/:id", handlers.Project.HandleEditProject)

	timesheetGroup := e.Group("/api/timesheets", requireLogin)
	timesheetGroup.GET("", handlers.Timesheet.HandleListTimesheets)
	timesheetGroup.PUT("/:id/sheet-name", handlers.Timesheet.HandleRenameSheet)
}
