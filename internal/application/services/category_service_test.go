package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tmtrack/core/internal/domain/entities"
)

// fakeCategoryRepo holds the single category list in memory. A nil list
// stands in for the seeded defaults, matching the store adapter.
type fakeCategoryRepo struct {
	categories []string
	replaces   int
}

func (r *fakeCategoryRepo) Get(_ context.Context) ([]string, error) {
	if r.categories == nil {
		out := make([]string, len(entities.DefaultCategories))
		copy(out, entities.DefaultCategories)
		return out, nil
	}
	out := make([]string, len(r.categories))
	copy(out, r.categories)
	return out, nil
}

func (r *fakeCategoryRepo) Replace(_ context.Context, categories []string) error {
	r.categories = make([]string, len(categories))
	copy(r.categories, categories)
	r.replaces++
	return nil
}

func TestGetCategoriesDefaults(t *testing.T) {
	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo, testLogger(t))

	categories, err := svc.GetCategories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, entities.DefaultCategories, categories)
}

func TestReplaceCategoriesIsDestructive(t *testing.T) {
	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo, testLogger(t))

	replaced, err := svc.ReplaceCategories(context.Background(), []string{"Research", "Writing"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Research", "Writing"}, replaced)

	// The previous list is gone entirely, not merged.
	categories, err := svc.GetCategories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"Research", "Writing"}, categories)
}

func TestReplaceCategoriesEmptyListAllowed(t *testing.T) {
	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo, testLogger(t))

	replaced, err := svc.ReplaceCategories(context.Background(), []string{})
	assert.NoError(t, err)
	assert.Empty(t, replaced)
	assert.Equal(t, 1, repo.replaces)
}

func TestReplaceCategoriesRejectsEmptyEntry(t *testing.T) {
	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo, testLogger(t))

	_, err := svc.ReplaceCategories(context.Background(), []string{"Research", ""})

	var verrs entities.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Equal(t, 0, repo.replaces, "a rejected replacement must not touch the store")
}

func TestReplaceCategoriesRejectsDuplicates(t *testing.T) {
	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo, testLogger(t))

	_, err := svc.ReplaceCategories(context.Background(), []string{"Research", "Research"})

	var verrs entities.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
	assert.Equal(t, 0, repo.replaces)
}
