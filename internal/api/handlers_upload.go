// handlers_upload.go - Upload and process operation handlers
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"github.com/billrate-system/backend/internal/session"
	"github.com/billrate-system/backend/internal/store"
	"github.com/billrate-system/backend/internal/timesheet"
)

// UploadHandlerImpl implements the UploadHandler interface.
type UploadHandlerImpl struct {
	store    store.BillingStore
	sessions *session.Manager
	checker  *timesheet.FileChecker
	importer *timesheet.Importer
	log      *log.Logger
}

// NewUploadHandler creates a new upload handler instance.
func NewUploadHandler(billing store.BillingStore, sessions *session.Manager,
	checker *timesheet.FileChecker, importer *timesheet.Importer, logger *log.Logger) UploadHandler {
	return &UploadHandlerImpl{
		store:    billing,
		sessions: sessions,
		checker:  checker,
		importer: importer,
		log:      logger,
	}
}

// HandleUploadFile accepts a timesheet CSV as multipart/form-data, validates
// it against the project registry and the structural rules, and stages it
// for processing. A rejected upload has no side effect.
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("No file provided")
	}

	src, err := file.Open()
	if err != nil {
		return NewBadRequestError("File processing error: " + err.Error())
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewBadRequestError("File processing error: " + err.Error())
	}

	registered, err := h.store.ProjectNames(c.Request().Context())
	if err != nil {
		return NewBadRequestError("File processing error: " + err.Error())
	}

	name, verrs, err := h.checker.AcceptUpload(file.Filename, data, registered)
	if err != nil {
		return NewBadRequestError("File processing error: " + err.Error())
	}
	if len(verrs) > 0 {
		return NewBadRequestError(strings.Join(verrs, " | "))
	}

	h.log.Info("file staged", "name", name, "size", len(data))

	return c.JSON(http.StatusOK, map[string]string{
		"message":   "File uploaded successfully!",
		"file_name": name,
	})
}

type processFileRequest struct {
	FileName string `json:"file_name"`
}

// HandleProcessFile imports a staged file into the billing store and caches
// the resulting invoice data in the caller's session.
func (h *UploadHandlerImpl) HandleProcessFile(c echo.Context) error {
	var req processFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid JSON data")
	}
	if req.FileName == "" {
		return NewBadRequestError("No file name provided")
	}

	result, err := h.importer.Import(c.Request().Context(), req.FileName)
	if err != nil {
		if errors.Is(err, timesheet.ErrFileNotFound) {
			return NewBadRequestError("File not found!")
		}
		return NewBadRequestError("Processing error: " + err.Error())
	}

	if entry, ok := currentSession(c); ok {
		if result.InvoiceError != "" {
			h.sessions.SetInvoiceError(entry.Token, result.InvoiceError)
		} else {
			h.sessions.SetInvoice(entry.Token, result.Invoice)
		}
	}

	h.log.Info("file processed", "name", req.FileName,
		"sheet", result.SheetName, "inserted", result.Inserted, "skipped", len(result.Skipped))

	sheetName := ""
	if result.SheetName != "" {
		sheetName = "the sheetname is " + result.SheetName + ".You can change it later"
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":      "File processed successfully!",
		"sheet_name":   sheetName,
		"redirect_url": "/list_projects/",
	})
}
