// handlers_invoice.go - Session-scoped invoice view and export handlers
package api

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/xuri/excelize/v2"

	"github.com/billrate-system/backend/internal/session"
)

// InvoiceHandlerImpl implements the InvoiceHandler interface.
type InvoiceHandlerImpl struct {
	sessions *session.Manager
}

// NewInvoiceHandler creates a new invoice handler instance.
func NewInvoiceHandler(sessions *session.Manager) InvoiceHandler {
	return &InvoiceHandlerImpl{sessions: sessions}
}

// HandleListInvoiceProjects returns the project names carrying cached
// invoice data for the calling session.
func (h *InvoiceHandlerImpl) HandleListInvoiceProjects(c echo.Context) error {
	entry, ok := currentSession(c)
	if !ok {
		return NewUnauthorizedError("Login required")
	}

	data, ok := h.sessions.Invoice(entry.Token)
	if !ok {
		return NewBadRequestError("No invoice data found")
	}

	projects := data.Projects()
	sort.Strings(projects)

	return c.JSON(http.StatusOK, map[string]any{"projects": projects})
}

// projectParam returns the :project path parameter with percent-encoding
// undone, so names with spaces address their cache entry.
func projectParam(c echo.Context) string {
	raw := c.Param("project")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// HandleGetInvoice returns the cached line items for one project.
func (h *InvoiceHandlerImpl) HandleGetInvoice(c echo.Context) error {
	entry, ok := currentSession(c)
	if !ok {
		return NewUnauthorizedError("Login required")
	}

	project := projectParam(c)
	data, ok := h.sessions.Invoice(entry.Token)
	if !ok {
		return NewBadRequestError("No invoice data found")
	}

	items, ok := data[project]
	if !ok {
		return NewBadRequestError("No invoice data found")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"project":    project,
		"line_items": items,
	})
}

// HandleExportInvoiceXLSX renders one project's invoice as an xlsx workbook.
func (h *InvoiceHandlerImpl) HandleExportInvoiceXLSX(c echo.Context) error {
	entry, ok := currentSession(c)
	if !ok {
		return NewUnauthorizedError("Login required")
	}

	project := projectParam(c)
	data, ok := h.sessions.Invoice(entry.Token)
	if !ok {
		return NewBadRequestError("No invoice data found")
	}

	items, ok := data[project]
	if !ok {
		return NewBadRequestError("No invoice data found")
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Invoice"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return NewBadRequestError("Export error: " + err.Error())
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := []any{"Project", "Employee ID", "Total Hours", "Unit Price", "Total Cost"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return NewBadRequestError("Export error: " + err.Error())
	}

	var totalCost float64
	for i, item := range items {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{item.Project, item.EmployeeID, item.TotalHours, item.UnitPrice, item.TotalCost}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return NewBadRequestError("Export error: " + err.Error())
		}
		totalCost += item.TotalCost
	}

	totalRow := []any{"Total", "", "", "", totalCost}
	cell := fmt.Sprintf("A%d", len(items)+2)
	if err := f.SetSheetRow(sheet, cell, &totalRow); err != nil {
		return NewBadRequestError("Export error: " + err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="invoice_%s.xlsx"`, project))
	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	return f.Write(c.Response())
}

// HandleExportInvoicesMsgpack returns the full cached invoice mapping
// msgpack-encoded, for clients that prefer the compact wire form.
func (h *InvoiceHandlerImpl) HandleExportInvoicesMsgpack(c echo.Context) error {
	entry, ok := currentSession(c)
	if !ok {
		return NewUnauthorizedError("Login required")
	}

	data, ok := h.sessions.Invoice(entry.Token)
	if !ok {
		return NewBadRequestError("No invoice data found")
	}

	encoded, err := msgpack.Marshal(data)
	if err != nil {
		return NewBadRequestError("Export error: " + err.Error())
	}

	return c.Blob(http.StatusOK, "application/msgpack", encoded)
}
