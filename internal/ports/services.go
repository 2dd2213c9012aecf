package ports

import (
	"context"

	"github.com/tmtrack/core/internal/domain/entities"
)

// IdentityResolver maps bearer tokens to identities. The underlying tables
// are loaded once at startup and frozen; resolution is purely functional.
type IdentityResolver interface {
	Resolve(token string) entities.Identity
	GroupsFor(userID string) []string
	Users() []string
}

// TaskService interface for task record operations
type TaskService interface {
	CreateTask(ctx context.Context, owner entities.Identity, payload map[string]any) (*entities.Task, error)
	GetTask(ctx context.Context, taskID string) (*entities.Task, error)
	UpdateTask(ctx context.Context, taskID string, patch map[string]any) (*entities.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
}

// CategoryService interface for the shared category list
type CategoryService interface {
	GetCategories(ctx context.Context) ([]string, error)
	ReplaceCategories(ctx context.Context, categories []string) ([]string, error)
}
