package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tmtrack/core/internal/infrastructure/database"
	"github.com/tmtrack/core/internal/infrastructure/logger"
)

// BackupService dumps and restores the collections the API depends on. The
// file format is a JSON object keyed by collection name, each document held
// as canonical extended JSON so types survive the round trip.
type BackupService struct {
	db     *database.DB
	logger *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *logger.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

func (s *BackupService) collections() map[string]*mongo.Collection {
	return map[string]*mongo.Collection{
		database.CategoriesCollection: s.db.Categories(),
		s.db.TasksCollectionName():    s.db.Tasks(),
	}
}

// Backup writes every essential collection to path.
func (s *BackupService) Backup(ctx context.Context, path string) error {
	dump := make(map[string][]json.RawMessage)

	for name, coll := range s.collections() {
		cursor, err := coll.Find(ctx, bson.M{})
		if err != nil {
			return fmt.Errorf("read collection %s: %w", name, err)
		}

		var docs []bson.Raw
		if err := cursor.All(ctx, &docs); err != nil {
			return fmt.Errorf("decode collection %s: %w", name, err)
		}

		encoded := make([]json.RawMessage, 0, len(docs))
		for _, doc := range docs {
			data, err := bson.MarshalExtJSON(doc, true, false)
			if err != nil {
				return fmt.Errorf("encode document in %s: %w", name, err)
			}
			encoded = append(encoded, data)
		}
		dump[name] = encoded

		s.logger.Infow("Collection backed up", "collection", name, "documents", len(encoded))
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup file %s: %w", path, err)
	}

	return nil
}

// Restore loads a backup file and replaces the contents of every collection
// it covers. The file is fully parsed before any collection is touched;
// after that point the restore is destructive.
func (s *BackupService) Restore(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup file %s: %w", path, err)
	}

	var dump map[string][]json.RawMessage
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parse backup file %s: %w", path, err)
	}

	for name, coll := range s.collections() {
		encoded, ok := dump[name]
		if !ok {
			s.logger.Warnw("Collection missing from backup file, skipping", "collection", name)
			continue
		}

		docs := make([]interface{}, 0, len(encoded))
		for _, raw := range encoded {
			var doc bson.D
			if err := bson.UnmarshalExtJSON(raw, true, &doc); err != nil {
				return fmt.Errorf("decode document for %s: %w", name, err)
			}
			docs = append(docs, doc)
		}

		deleted, err := coll.DeleteMany(ctx, bson.M{})
		if err != nil {
			return fmt.Errorf("clear collection %s: %w", name, err)
		}

		if len(docs) > 0 {
			if _, err := coll.InsertMany(ctx, docs); err != nil {
				return fmt.Errorf("restore collection %s: %w", name, err)
			}
		}

		s.logger.Infow("Collection restored",
			"collection", name,
			"cleared", deleted.DeletedCount,
			"inserted", len(docs),
		)
	}

	return nil
}
