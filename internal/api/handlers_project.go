// handlers_project.go - Project registration handlers
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/billrate-system/backend/internal/store"
	"github.com/billrate-system/backend/internal/timesheet"
)

// ProjectHandlerImpl implements the ProjectHandler interface.
type ProjectHandlerImpl struct {
	store store.BillingStore
}

// NewProjectHandler creates a new project handler instance.
func NewProjectHandler(billing store.BillingStore) ProjectHandler {
	return &ProjectHandlerImpl{store: billing}
}

type projectRequest struct {
	Name string `json:"name"`
}

// HandleListProjects returns all registered projects.
func (h *ProjectHandlerImpl) HandleListProjects(c echo.Context) error {
	projects, err := h.store.ListProjects(c.Request().Context())
	if err != nil {
		return NewBadRequestError("Processing error: " + err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"projects": projects})
}

// HandleAddProject registers a project. Names are stored in the same
// normalized form uploads are compared against; duplicates are rejected
// with a user-facing message.
func (h *ProjectHandlerImpl) HandleAddProject(c echo.Context) error {
	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid JSON data")
	}

	name := timesheet.NormalizeProjectName(req.Name)
	if name == "" {
		return NewBadRequestError("Project name cannot be empty")
	}

	project, err := h.store.CreateProject(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return NewBadRequestError("A project with this name already exists")
		}
		return NewBadRequestError("Processing error: " + err.Error())
	}

	return c.JSON(http.StatusCreated, project)
}

// HandleEditProject renames a project. Any non-empty name is accepted.
func (h *ProjectHandlerImpl) HandleEditProject(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewBadRequestError("Invalid project id")
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("Invalid JSON data")
	}

	name := timesheet.NormalizeProjectName(req.Name)
	if name == "" {
		return NewBadRequestError("Project name cannot be empty")
	}

	project, err := h.store.UpdateProject(c.Request().Context(), id, name)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return NewNotFoundError("Project not found")
		case errors.Is(err, store.ErrDuplicate):
			return NewBadRequestError("A project with this name already exists")
		default:
			return NewBadRequestError("Processing error: " + err.Error())
		}
	}

	return c.JSON(http.StatusOK, project)
}
