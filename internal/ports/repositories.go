package ports

import (
	"context"

	"github.com/tmtrack/core/internal/domain/entities"
)

// TaskFilter narrows a task listing. An empty filter matches every task.
type TaskFilter struct {
	UserIDs []string
}

// TaskRepository defines the interface for task document operations. Every
// operation targets exactly one document; the store's single-document
// atomicity is the only concurrency guarantee.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, taskID string) (*entities.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*entities.Task, error)
	// Update applies the given fields to the document and returns the updated
	// task. It never creates a document for an unknown taskID.
	Update(ctx context.Context, taskID string, fields map[string]any) (*entities.Task, error)
}

// CategoryRepository defines the interface for the single shared category
// list, held as one logical document.
type CategoryRepository interface {
	Get(ctx context.Context) ([]string, error)
	Replace(ctx context.Context, categories []string) error
}
