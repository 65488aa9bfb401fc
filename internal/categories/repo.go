package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

// Repository encapsulates category persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a category repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a category by primary key. Returns nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindBySlug loads a category by its slug. Returns nil when absent.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "slug = ?", strings.TrimSpace(slug)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// List returns every category ordered by name. The catalog taxonomy is
// small enough that pagination would be noise here.
func (r *Repository) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new category.
func (r *Repository) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Update applies a partial column patch and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Category, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete removes the category row if it exists. Products referencing it
// fall back to a null category via the FK.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
