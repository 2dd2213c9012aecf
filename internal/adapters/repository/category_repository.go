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

// categoryDocument is the single logical record holding the category list.
type categoryDocument struct {
	Categories []string `bson:"categories"`
}

// CategoryRepositoryImpl implements the CategoryRepository interface. The
// collection holds at most one document; replace upserts it.
type CategoryRepositoryImpl struct {
	collection *mongo.Collection
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) ports.CategoryRepository {
	return &CategoryRepositoryImpl{collection: db.Categories()}
}

func (r *CategoryRepositoryImpl) Get(ctx context.Context) ([]string, error) {
	var doc categoryDocument
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Migration seeds the document; fall back to the default set if
			// the store has never been initialized.
			defaults := make([]string, len(entities.DefaultCategories))
			copy(defaults, entities.DefaultCategories)
			return defaults, nil
		}
		return nil, fmt.Errorf("get categories: %w", err)
	}

	if doc.Categories == nil {
		return []string{}, nil
	}
	return doc.Categories, nil
}

func (r *CategoryRepositoryImpl) Replace(ctx context.Context, categories []string) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{}, categoryDocument{Categories: categories}, opts)
	if err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}
	return nil
}
