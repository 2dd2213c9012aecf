package services

import (
	"context"
	"fmt"

	"github.com/tmtrack/core/internal/domain/entities"
	"github.com/tmtrack/core/internal/infrastructure/logger"
	"github.com/tmtrack/core/internal/ports"
)

// CategoryService manages the single shared category list.
type CategoryService struct {
	categoryRepo ports.CategoryRepository
	logger       *logger.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo ports.CategoryRepository, logger *logger.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// GetCategories returns the current category list.
func (s *CategoryService) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.categoryRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// ReplaceCategories overwrites the entire list. This is a full replacement,
// never a merge. Empty entries and duplicates are rejected so the stored
// list always holds distinct, non-empty names.
func (s *CategoryService) ReplaceCategories(ctx context.Context, categories []string) ([]string, error) {
	var errs entities.ValidationErrors
	seen := make(map[string]bool, len(categories))
	for i, name := range categories {
		if name == "" {
			errs = append(errs, entities.ValidationError{
				Field:  "categories",
				Reason: fmt.Sprintf("entry %d must not be empty", i),
			})
			continue
		}
		if seen[name] {
			errs = append(errs, entities.ValidationError{
				Field:  "categories",
				Reason: fmt.Sprintf("duplicate entry %q", name),
			})
			continue
		}
		seen[name] = true
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.categoryRepo.Replace(ctx, categories); err != nil {
		return nil, fmt.Errorf("failed to replace categories: %w", err)
	}

	s.logger.Infow("Categories replaced", "count", len(categories))

	return categories, nil
}

var _ ports.CategoryService = (*CategoryService)(nil)
