package categories

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Store defines the persistence operations the service needs.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes category reads for the storefront and CRUD for admins.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string, description *string) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, name *string, description *string) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Store
}

// NewService builds the category service with its required dependencies.
func NewService(repo Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return category, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, name string, description *string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}

	slug := Slugify(name)
	existing, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category slug")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
	}

	created, err := s.repo.Create(ctx, &models.Category{
		Name:        name,
		Slug:        slug,
		Description: description,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, name *string, description *string) (*models.Category, error) {
	updates := map[string]any{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
		}
		updates["name"] = trimmed
		updates["slug"] = Slugify(trimmed)
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return nil
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowers the name and collapses runs of non-alphanumerics to a
// single hyphen.
func Slugify(name string) string {
	slug := slugStripPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
