package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/database"
	"github.com/tmtrack/core/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface on the Mongo
// task collection. Documents are keyed by task_id, not by Mongo's _id.
type TaskRepositoryImpl struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{collection: db.Tasks()}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	_, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		// A unique-index violation on task_id is not retried; at uuid-v4
		// entropy a collision is a store misconfiguration, not a race.
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("task id %s already exists: %w", task.TaskID, err)
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, taskID string) (*entities.Task, error) {
	var task entities.Task
	err := r.collection.FindOne(ctx, bson.M{"task_id": taskID}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return &task, nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, filter ports.TaskFilter) ([]*entities.Task, error) {
	query := bson.M{}
	if len(filter.UserIDs) > 0 {
		query["userid"] = bson.M{"$in": filter.UserIDs}
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := []*entities.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, taskID string, fields map[string]any) (*entities.Task, error) {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task entities.Task
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"task_id": taskID},
		bson.M{"$set": set},
		opts,
	).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return &task, nil
}
