package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/logger"
)

// identityFields are embedded in every response envelope so each reply is
// annotated with the identity resolved for the request.
type identityFields struct {
	UserID string   `json:"userid"`
	Groups []string `json:"groups"`
}

func annotate(ident entities.Identity) identityFields {
	groups := ident.Groups
	if groups == nil {
		groups = []string{}
	}
	return identityFields{UserID: ident.UserID, Groups: groups}
}

// TaskMutationResponse acknowledges a create or update.
type TaskMutationResponse struct {
	identityFields
	Status  string `json:"status"`
	Message string `json:"message"`
	TaskID  string `json:"task_id"`
}

// TaskResponse wraps a single fetched task.
type TaskResponse struct {
	identityFields
	Status string         `json:"status"`
	Task   *entities.Task `json:"task"`
}

// TaskListResponse wraps a task listing.
type TaskListResponse struct {
	identityFields
	Status string           `json:"status"`
	Tasks  []*entities.Task `json:"tasks"`
}

// UserListResponse lists the userids known to the identity tables.
type UserListResponse struct {
	identityFields
	Users []string `json:"users"`
}

// CategoryListResponse wraps the shared category list.
type CategoryListResponse struct {
	identityFields
	Categories []string `json:"categories"`
}

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	identityFields
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// writeError maps service errors onto the response taxonomy: validation
// failures are 400, unknown task ids 404, everything else a 500 with the
// detail kept out of the body.
func writeError(c echo.Context, appLogger *logger.Logger, ident entities.Identity, err error) error {
	var verrs entities.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			identityFields: annotate(ident),
			Status:         "error",
			Message:        "Validation failed",
			Errors:         verrs.Fields(),
		})
	case errors.Is(err, entities.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{
			identityFields: annotate(ident),
			Status:         "error",
			Message:        "Task not found",
		})
	case errors.Is(err, entities.ErrEmptyPayload):
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			identityFields: annotate(ident),
			Status:         "error",
			Message:        "Request must be JSON",
		})
	default:
		appLogger.Errorw("Request failed", "error", err, "path", c.Request().URL.Path)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			identityFields: annotate(ident),
			Status:         "error",
			Message:        "Internal server error",
		})
	}
}
