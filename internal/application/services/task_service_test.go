package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/config"
	"github.com/tmtrack/core/internal/ports"
)

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// fakeTaskRepo is an in-memory TaskRepository that mimics the document
// store's single-document $set semantics.
type fakeTaskRepo struct {
	tasks map[string]*entities.Task
	order []string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*entities.Task)}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *entities.Task) error {
	stored := *task
	r.tasks[task.TaskID] = &stored
	r.order = append(r.order, task.TaskID)
	return nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, taskID string) (*entities.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}
	out := *task
	return &out, nil
}

func (r *fakeTaskRepo) List(_ context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	match := func(userID string) bool {
		if len(filter.UserIDs) == 0 {
			return true
		}
		for _, id := range filter.UserIDs {
			if id == userID {
				return true
			}
		}
		return false
	}

	out := []*entities.Task{}
	for _, id := range r.order {
		if match(r.tasks[id].UserID) {
			task := *r.tasks[id]
			out = append(out, &task)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, taskID string, fields map[string]any) (*entities.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, entities.ErrTaskNotFound
	}

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
		case "updated_at":
			task.UpdatedAt = value.(time.Time)
		default:
			if task.Extra == nil {
				task.Extra = make(map[string]string)
			}
			task.Extra[name] = value.(string)
		}
	}

	out := *task
	return &out, nil
}

func newTestTaskService(t *testing.T, repo ports.TaskRepository, allowUnknown bool) *TaskService {
	t.Helper()
	policy := config.ValidationConfig{AllowUnknownFields: allowUnknown}
	return NewTaskService(repo, policy, testLogger(t))
}

func danaIdentity() entities.Identity {
	return entities.Identity{UserID: "dana", Groups: []string{"Group A", "Group B"}}
}

func validCreatePayload() map[string]any {
	return map[string]any{
		"date":           "2023-10-27",
		"task_name":      "Review documentation",
		"category":       "Documentation",
		"expected_hours": 2.0,
	}
}

func TestCreateTaskRoundTrip(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	task, err := svc.CreateTask(context.Background(), danaIdentity(), validCreatePayload())
	assert.NoError(t, err)
	assert.Regexp(t, uuidV4Pattern, task.TaskID)

	fetched, err := svc.GetTask(context.Background(), task.TaskID)
	assert.NoError(t, err)
	assert.Equal(t, "Review documentation", fetched.TaskName)
	assert.Equal(t, "Documentation", fetched.Category)
	assert.Equal(t, "2023-10-27", fetched.Date)
	assert.Equal(t, 2.0, fetched.ExpectedHours)
	assert.True(t, fetched.CreatedAt.Equal(fetched.UpdatedAt))
}

func TestCreateTaskOwnerDefaultsToIdentity(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	task, err := svc.CreateTask(context.Background(), danaIdentity(), validCreatePayload())
	assert.NoError(t, err)
	assert.Equal(t, "dana", task.UserID)
}

func TestCreateTaskExplicitOwnerWins(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	payload := validCreatePayload()
	payload["userid"] = "michelle"

	task, err := svc.CreateTask(context.Background(), danaIdentity(), payload)
	assert.NoError(t, err)
	assert.Equal(t, "michelle", task.UserID)
}

func TestCreateTaskMissingRequiredField(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	payload := validCreatePayload()
	delete(payload, "task_name")

	_, err := svc.CreateTask(context.Background(), danaIdentity(), payload)

	var verrs entities.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Fields(), "task_name")
	assert.Empty(t, repo.tasks, "a rejected create must not persist anything")
}

func TestCreateTaskWrongTypes(t *testing.T) {
	cases := map[string]map[string]any{
		"task_name not a string":       {"task_name": 5.0},
		"expected_hours not a number":  {"expected_hours": "two"},
		"negative expected_hours":      {"expected_hours": -1.0},
		"negative actual_hours":        {"actual_hours": -0.5},
		"empty task_name":              {"task_name": ""},
		"empty category":               {"category": ""},
		"date not ISO":                 {"date": "27/10/2023"},
		"task_id supplied by client":   {"task_id": "custom-id"},
		"created_at supplied by client": {"created_at": "2023-01-01"},
	}

	for name, override := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newFakeTaskRepo()
			svc := newTestTaskService(t, repo, false)

			payload := validCreatePayload()
			for k, v := range override {
				payload[k] = v
			}

			_, err := svc.CreateTask(context.Background(), danaIdentity(), payload)

			var verrs entities.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
			assert.Empty(t, repo.tasks)
		})
	}
}

func TestCreateTaskUnknownFieldRejectedByDefault(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	payload := validCreatePayload()
	payload["favorite_color"] = "green"

	_, err := svc.CreateTask(context.Background(), danaIdentity(), payload)

	var verrs entities.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Fields(), "favorite_color")
}

func TestCreateTaskUnknownFieldPassThroughPolicy(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, true)

	payload := validCreatePayload()
	payload["favorite_color"] = "green"

	task, err := svc.CreateTask(context.Background(), danaIdentity(), payload)
	assert.NoError(t, err)
	assert.Equal(t, "green", task.Extra["favorite_color"])

	// Pass-through fields still have to be strings.
	payload = validCreatePayload()
	payload["favorite_number"] = 7.0

	_, err = svc.CreateTask(context.Background(), danaIdentity(), payload)
	var verrs entities.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestUpdateTaskPartialPreservesRest(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	created, err := svc.CreateTask(context.Background(), danaIdentity(), validCreatePayload())
	assert.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	updated, err := svc.UpdateTask(context.Background(), created.TaskID, map[string]any{
		"actual_hours": 2.5,
	})
	assert.NoError(t, err)

	assert.NotNil(t, updated.ActualHours)
	assert.Equal(t, 2.5, *updated.ActualHours)
	assert.Equal(t, created.TaskName, updated.TaskName)
	assert.Equal(t, created.Category, updated.Category)
	assert.Equal(t, created.Date, updated.Date)
	assert.Equal(t, created.ExpectedHours, updated.ExpectedHours)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "created_at never changes")
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "updated_at must advance")
}

func TestUpdateTaskUnknownID(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	_, err := svc.UpdateTask(context.Background(), "no-such-id", map[string]any{
		"actual_hours": 1.0,
	})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
	assert.Empty(t, repo.tasks, "update of a missing id must not upsert")
}

func TestUpdateTaskRejectsImmutableFields(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	created, err := svc.CreateTask(context.Background(), danaIdentity(), validCreatePayload())
	assert.NoError(t, err)

	for _, field := range []string{"task_id", "created_at"} {
		_, err := svc.UpdateTask(context.Background(), created.TaskID, map[string]any{
			field: "overwritten",
		})

		var verrs entities.ValidationErrors
		assert.ErrorAs(t, err, &verrs, "field %s must be immutable", field)
	}

	// Nothing was applied along the way.
	fetched, err := svc.GetTask(context.Background(), created.TaskID)
	assert.NoError(t, err)
	assert.True(t, fetched.UpdatedAt.Equal(created.UpdatedAt))
}

func TestUpdateTaskRejectedPatchNotPartiallyApplied(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	created, err := svc.CreateTask(context.Background(), danaIdentity(), validCreatePayload())
	assert.NoError(t, err)

	// One valid field plus one invalid field: the whole patch is rejected.
	_, err = svc.UpdateTask(context.Background(), created.TaskID, map[string]any{
		"actual_hours": 2.5,
		"task_name":    "",
	})

	var verrs entities.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	fetched, err := svc.GetTask(context.Background(), created.TaskID)
	assert.NoError(t, err)
	assert.Nil(t, fetched.ActualHours)
	assert.Equal(t, "Review documentation", fetched.TaskName)
}

func TestUpdateTaskEmptyPatchRefreshesTimestamp(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	created, err := svc.CreateTask(context.Background(), danaIdentity(), validCreatePayload())
	assert.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	updated, err := svc.UpdateTask(context.Background(), created.TaskID, map[string]any{})
	assert.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	assert.Equal(t, created.TaskName, updated.TaskName)
}

func TestListTasksFilterByOwner(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTestTaskService(t, repo, false)

	_, err := svc.CreateTask(context.Background(), danaIdentity(), validCreatePayload())
	assert.NoError(t, err)

	michelle := entities.Identity{UserID: "michelle", Groups: []string{"Group A"}}
	_, err = svc.CreateTask(context.Background(), michelle, validCreatePayload())
	assert.NoError(t, err)

	all, err := svc.ListTasks(context.Background(), ports.TaskFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListTasks(context.Background(), ports.TaskFilter{UserIDs: []string{"dana"}})
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "dana", mine[0].UserID)
}
