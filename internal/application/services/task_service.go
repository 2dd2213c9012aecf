package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/config"
	"github.com/tmtrack/core/internal/infrastructure/logger"
	"github.com/tmtrack/core/internal/ports"
)

// TaskService enforces the task schema and orchestrates store operations.
// All validation happens before any persistence call, so a rejected request
// never mutates state.
type TaskService struct {
	taskRepo ports.TaskRepository
	policy   config.ValidationConfig
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, policy config.ValidationConfig, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		policy:   policy,
		logger:   logger,
	}
}

// CreateTask validates the payload, stamps identity and timestamps, and
// persists a new task document. The generated task_id and created_at are
// immutable for the life of the document.
func (s *TaskService) CreateTask(ctx context.Context, owner entities.Identity, payload map[string]any) (*entities.Task, error) {
	if len(payload) == 0 {
		return nil, entities.ErrEmptyPayload
	}

	fields, extras, errs := s.validate(payload, true)
	if len(errs) > 0 {
		return nil, errs
	}

	now := time.Now().UTC()
	task := &entities.Task{
		TaskID:    uuid.NewString(),
		UserID:    owner.UserID,
		Extra:     extras,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyFields(task, fields)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.TaskID, "userid", task.UserID)

	return task, nil
}

// GetTask retrieves a task by its task_id.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*entities.Task, error) {
	return s.taskRepo.GetByID(ctx, taskID)
}

// ListTasks retrieves stored tasks, optionally narrowed by owner. Order is
// store-defined.
func (s *TaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a validated partial update to an existing task. Fields
// absent from the patch are left untouched; an empty patch is accepted as a
// refresh of updated_at only. No document is created for an unknown task_id.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, patch map[string]any) (*entities.Task, error) {
	fields, extras, errs := s.validate(patch, false)
	if len(errs) > 0 {
		return nil, errs
	}

	existing, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	// updated_at must never move backwards, even across clock adjustments.
	now := time.Now().UTC()
	if now.Before(existing.UpdatedAt) {
		now = existing.UpdatedAt
	}
	fields["updated_at"] = now
	for k, v := range extras {
		fields[k] = v
	}

	updated, err := s.taskRepo.Update(ctx, taskID, fields)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Task updated", "task_id", taskID)

	return updated, nil
}

// Task field schema. Every inbound field is checked against this table; the
// stored documents therefore always satisfy the required-field constraints.
type fieldKind int

const (
	kindString fieldKind = iota
	kindDate
	kindNumber
)

type fieldSpec struct {
	kind     fieldKind
	required bool
	mutable  bool
	nonEmpty bool
}

var taskFields = map[string]fieldSpec{
	"userid":         {kind: kindString, mutable: true, nonEmpty: true},
	"date":           {kind: kindDate, mutable: true},
	"task_name":      {kind: kindString, required: true, mutable: true, nonEmpty: true},
	"category":       {kind: kindString, required: true, mutable: true, nonEmpty: true},
	"expected_hours": {kind: kindNumber, required: true, mutable: true},
	"actual_hours":   {kind: kindNumber, mutable: true},
	"description":    {kind: kindString, mutable: true},
	"project_code":   {kind: kindString, mutable: true},
	"notes":          {kind: kindString, mutable: true},
	// Server-owned fields are never accepted from a client.
	"task_id":    {kind: kindString},
	"created_at": {kind: kindString},
	"updated_at": {kind: kindString},
}

// validate checks a payload against the field table. For creates, required
// fields must be present; for updates, every present field must be mutable.
// Returns the accepted schema fields, accepted pass-through extras, and all
// rejections at once.
func (s *TaskService) validate(payload map[string]any, isCreate bool) (map[string]any, map[string]string, entities.ValidationErrors) {
	var errs entities.ValidationErrors
	fields := make(map[string]any, len(payload))
	var extras map[string]string

	if isCreate {
		for name, spec := range taskFields {
			if spec.required {
				if _, ok := payload[name]; !ok {
					errs = append(errs, entities.ValidationError{
						Field:  name,
						Reason: fmt.Sprintf("'%s' is a required field", name),
					})
				}
			}
		}
	}

	for name, value := range payload {
		spec, known := taskFields[name]
		if !known {
			if !s.policy.AllowUnknownFields {
				errs = append(errs, entities.ValidationError{
					Field:  name,
					Reason: fmt.Sprintf("'%s' is not a known field", name),
				})
				continue
			}
			// Compatibility policy: pass-through fields must be strings.
			str, ok := value.(string)
			if !ok {
				errs = append(errs, entities.ValidationError{
					Field:  name,
					Reason: fmt.Sprintf("pass-through field '%s' must be a string", name),
				})
				continue
			}
			if extras == nil {
				extras = make(map[string]string)
			}
			extras[name] = str
			continue
		}

		if !spec.mutable {
			errs = append(errs, entities.ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("'%s' is set by the server and cannot be supplied", name),
			})
			continue
		}

		accepted, verr := checkField(name, spec, value)
		if verr != nil {
			errs = append(errs, *verr)
			continue
		}
		fields[name] = accepted
	}

	if len(errs) > 0 {
		return nil, nil, errs
	}
	return fields, extras, nil
}

func checkField(name string, spec fieldSpec, value any) (any, *entities.ValidationError) {
	switch spec.kind {
	case kindString, kindDate:
		str, ok := value.(string)
		if !ok {
			return nil, &entities.ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("'%s' must be a string", name),
			}
		}
		if spec.nonEmpty && str == "" {
			return nil, &entities.ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("'%s' must not be empty", name),
			}
		}
		if spec.kind == kindDate && str != "" {
			if _, err := time.Parse("2006-01-02", str); err != nil {
				return nil, &entities.ValidationError{
					Field:  name,
					Reason: fmt.Sprintf("'%s' must be a date in YYYY-MM-DD format", name),
				}
			}
		}
		return str, nil

	case kindNumber:
		num, ok := value.(float64)
		if !ok {
			return nil, &entities.ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("'%s' must be a number", name),
			}
		}
		if num < 0 {
			return nil, &entities.ValidationError{
				Field:  name,
				Reason: fmt.Sprintf("'%s' must not be negative", name),
			}
		}
		return num, nil
	}

	return nil, &entities.ValidationError{Field: name, Reason: "unsupported field kind"}
}

// applyFields copies accepted create fields onto the task entity.
func applyFields(task *entities.Task, fields map[string]any) {
	for name, value := range fields {
		switch name {
		case "userid":
			task.UserID = value.(string)
		case "date":
			task.Date = value.(string)
		case "task_name":
			task.TaskName = value.(string)
		case "category":
			task.Category = value.(string)
		case "expected_hours":
			task.ExpectedHours = value.(float64)
		case "actual_hours":
			hours := value.(float64)
			task.ActualHours = &hours
		case "description":
			task.Description = value.(string)
		case "project_code":
			task.ProjectCode = value.(string)
		case "notes":
			task.Notes = value.(string)
		}
	}
}

var _ ports.TaskService = (*TaskService)(nil)
