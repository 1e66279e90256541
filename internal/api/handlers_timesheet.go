// handlers_timesheet.go - Persisted timesheet handlers
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/billrate-system/backend/internal/store"
)

// TimesheetHandlerImpl implements the TimesheetHandler interface.
type TimesheetHandlerImpl struct {
	store store.BillingStore
}

// NewTimesheetHandler creates a new timesheet handler instance.
func NewTimesheetHandler(billing store.BillingStore) TimesheetHandler {
	return &TimesheetHandlerImpl{store: billing}
}

// HandleListTimesheets returns persisted rows, newest first.
func (h *TimesheetHandlerImpl) HandleListTimesheets(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return NewBadRequestError("Invalid limit")
		}
		limit = n
	}

	rows, err := h.store.ListTimesheets(c.Request().Context(), limit)
	if err != nil {
		return NewBadRequestError("Processing error: " + err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"timesheets": rows})
}

type renameSheetRequest struct {
	SheetName string `json:"sheet_name"`
}

// HandleRenameSheet applies a new sheet name to every row sharing the
// addressed row's current sheet name.
func (h *TimesheetHandlerImpl) HandleRenameSheet(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewBadRequestError("Invalid timesheet id")
	}

	var req renameSheetRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid JSON data")
	}

	newName := strings.TrimSpace(req.SheetName)
	if newName == "" {
		return NewBadRequestError("Sheet name cannot be empty")
	}

	ts, err := h.store.GetTimesheet(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFoundError("Timesheet not found")
		}
		return NewBadRequestError("Processing error: " + err.Error())
	}

	updated, err := h.store.RenameSheet(c.Request().Context(), ts.SheetName, newName)
	if err != nil {
		return NewBadRequestError("Processing error: " + err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"message":      "Sheet renamed successfully!",
		"sheet_name":   newName,
		"rows_updated": updated,
	})
}
