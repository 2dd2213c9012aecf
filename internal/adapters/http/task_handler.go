package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/logger"
	"github.com/tmtrack/core/internal/ports"
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService ports.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// bindPayload decodes the request body into a field map. Task payloads are
// validated against the field table, not bound to a struct, so unknown
// fields can be detected.
func bindPayload(c echo.Context) (map[string]any, error) {
	var payload map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return nil, entities.ErrEmptyPayload
	}
	if payload == nil {
		return nil, entities.ErrEmptyPayload
	}
	return payload, nil
}

// CreateTask handles POST /tasks
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Success 201 {object} TaskMutationResponse
// @Failure 400 {object} ErrorResponse
// @Router /tasks [post]
func (h *TaskHandler) CreateTask(c echo.Context) error {
	ident := IdentityFromContext(c)

	payload, err := bindPayload(c)
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), ident, payload)
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	return c.JSON(http.StatusCreated, TaskMutationResponse{
		identityFields: annotate(ident),
		Status:         "success",
		Message:        "Task created successfully",
		TaskID:         task.TaskID,
	})
}

// UpdateTask handles PUT /tasks/:task_id
// @Summary Apply a partial update to a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Success 200 {object} TaskMutationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{task_id} [put]
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	ident := IdentityFromContext(c)
	taskID := c.Param("task_id")

	payload, err := bindPayload(c)
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), taskID, payload)
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	return c.JSON(http.StatusOK, TaskMutationResponse{
		identityFields: annotate(ident),
		Status:         "success",
		Message:        "Task updated successfully",
		TaskID:         task.TaskID,
	})
}

// GetTask handles GET /tasks/:task_id
// @Summary Fetch a task by id
// @Tags Tasks
// @Produce json
// @Success 200 {object} TaskResponse
// @Failure 404 {object} ErrorResponse
// @Router /tasks/{task_id} [get]
func (h *TaskHandler) GetTask(c echo.Context) error {
	ident := IdentityFromContext(c)

	task, err := h.taskService.GetTask(c.Request().Context(), c.Param("task_id"))
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	return c.JSON(http.StatusOK, TaskResponse{
		identityFields: annotate(ident),
		Status:         "success",
		Task:           task,
	})
}

// ListTasks handles GET /tasks
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Param userid query string false "Restrict the listing to one owner"
// @Success 200 {object} TaskListResponse
// @Router /tasks [get]
func (h *TaskHandler) ListTasks(c echo.Context) error {
	ident := IdentityFromContext(c)

	filter := ports.TaskFilter{}
	if userID := c.QueryParam("userid"); userID != "" {
		filter.UserIDs = []string{userID}
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, h.logger, ident, err)
	}

	return c.JSON(http.StatusOK, TaskListResponse{
		identityFields: annotate(ident),
		Status:         "success",
		Tasks:          tasks,
	})
}
