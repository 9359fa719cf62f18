package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mall-api/internal/events"
	"mall-api/internal/models"
	"mall-api/internal/validation"
)

type CategoryService struct {
	recorder
	categories *table[models.Category]
}

func NewCategoryService(db *sql.DB, publisher events.Publisher, logger zerolog.Logger) *CategoryService {
	return &CategoryService{
		recorder:   newRecorder(publisher, logger),
		categories: newCategoryTable(db),
	}
}

func (s *CategoryService) Create(ctx context.Context, actor models.Actor, patch models.CategoryPatch) (*models.Category, error) {
	var category models.Category
	patch.Apply(&category)
	category.Name = strings.TrimSpace(category.Name)
	if err := validation.Struct(&category); err != nil {
		return nil, err
	}

	now := s.timestamp()
	category.ID = uuid.NewString()
	category.CreatedAt = now
	category.UpdatedAt = now

	if err := s.categories.insert(ctx, &category); err != nil {
		return nil, s.fail(err, "Error creating category")
	}

	s.logger.Info().Str("category_id", category.ID).Str("name", category.Name).Msg("Category created")
	s.record(ctx, events.ActionCreated, "category", category.ID, actor)
	return &category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.list(ctx)
	if err != nil {
		return nil, s.fail(err, "Error listing categories")
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching category")
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, actor models.Actor, id string, patch models.CategoryPatch) (*models.Category, error) {
	category, err := s.categories.get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "Error fetching category")
	}

	patch.Apply(category)
	category.Name = strings.TrimSpace(category.Name)
	if err := validation.Struct(category); err != nil {
		return nil, err
	}
	category.UpdatedAt = s.timestamp()

	if err := s.categories.update(ctx, category); err != nil {
		return nil, s.fail(err, "Error updating category")
	}

	s.record(ctx, events.ActionUpdated, "category", category.ID, actor)
	return category, nil
}

// Delete removes the category. Shops and products that point at it keep the
// dangling id.
func (s *CategoryService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if err := s.categories.delete(ctx, id); err != nil {
		return s.fail(err, "Error deleting category")
	}
	s.logger.Info().Str("category_id", id).Msg("Category deleted")
	s.record(ctx, events.ActionDeleted, "category", id, actor)
	return nil
}
