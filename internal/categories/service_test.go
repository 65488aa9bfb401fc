package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type stubStore struct {
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*models.Category, error)
	findBySlugFn func(ctx context.Context, slug string) (*models.Category, error)
	listFn       func(ctx context.Context) ([]models.Category, error)
	createFn     func(ctx context.Context, category *models.Category) (*models.Category, error)
	updateFn     func(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Category, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (s *stubStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (s *stubStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	if s.findBySlugFn != nil {
		return s.findBySlugFn(ctx, slug)
	}
	return nil, nil
}

func (s *stubStore) List(ctx context.Context) ([]models.Category, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubStore) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	if s.createFn != nil {
		return s.createFn(ctx, category)
	}
	return category, nil
}

func (s *stubStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Category, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, id, updates)
	}
	return nil, nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return false, nil
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Programming Courses", "programming-courses"},
		{"  AI & Machine Learning  ", "ai-machine-learning"},
		{"Already-Sluggish", "already-sluggish"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCreateDerivesSlugAndRejectsDuplicates(t *testing.T) {
	var created *models.Category
	store := &stubStore{
		createFn: func(_ context.Context, category *models.Category) (*models.Category, error) {
			created = category
			return category, nil
		},
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if _, err := svc.Create(context.Background(), "Programming Courses", nil); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if created.Slug != "programming-courses" {
		t.Fatalf("expected derived slug, got %q", created.Slug)
	}

	store.findBySlugFn = func(context.Context, string) (*models.Category, error) {
		return created, nil
	}
	_, err = svc.Create(context.Background(), "Programming Courses", nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestUpdateMissingCategoryIsNotFound(t *testing.T) {
	svc, err := NewService(&stubStore{})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	name := "renamed"
	_, err = svc.Update(context.Background(), uuid.New(), &name, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
