// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// UploadHandler handles file upload and processing operations.
type UploadHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleProcessFile(c echo.Context) error
}

// InvoiceHandler serves the session-scoped invoice cache.
type InvoiceHandler interface {
	HandleListInvoiceProjects(c echo.Context) error
	HandleGetInvoice(c echo.Context) error
	HandleExportInvoiceXLSX(c echo.Context) error
	HandleExportInvoicesMsgpack(c echo.Context) error
}

// ProjectHandler handles project registration operations.
type ProjectHandler interface {
	HandleListProjects(c echo.Context) error
	HandleAddProject(c echo.Context) error
	HandleEditProject(c echo.Context) error
}

// TimesheetHandler handles persisted timesheet operations.
type TimesheetHandler interface {
	HandleListTimesheets(c echo.Context) error
	HandleRenameSheet(c echo.Context) error
}

// AuthHandler handles account and login operations.
type AuthHandler interface {
	HandleRegister(c echo.Context) error
	HandleLogin(c echo.Context) error
	HandleLogout(c echo.Context) error
	HandleCurrentUser(c echo.Context) error
}

// HealthHandler handles the liveness probe.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
