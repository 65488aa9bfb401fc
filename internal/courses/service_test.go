package courses

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

type stubStore struct {
	findCourseIDsFn func(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	grantFn         func(ctx context.Context, userID, courseID uuid.UUID, orderID *uuid.UUID) error
	listFn          func(ctx context.Context, userID uuid.UUID) ([]models.UserCourse, error)
	attachFn        func(ctx context.Context, productID, courseID uuid.UUID) error
	detachFn        func(ctx context.Context, productID, courseID uuid.UUID) (bool, error)
}

func (s *stubStore) FindCourseIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	if s.findCourseIDsFn != nil {
		return s.findCourseIDsFn(ctx, productID)
	}
	return nil, nil
}

func (s *stubStore) Grant(ctx context.Context, userID, courseID uuid.UUID, orderID *uuid.UUID) error {
	if s.grantFn != nil {
		return s.grantFn(ctx, userID, courseID, orderID)
	}
	return nil
}

func (s *stubStore) ListUserCourses(ctx context.Context, userID uuid.UUID) ([]models.UserCourse, error) {
	if s.listFn != nil {
		return s.listFn(ctx, userID)
	}
	return nil, nil
}

func (s *stubStore) AttachCourse(ctx context.Context, productID, courseID uuid.UUID) error {
	if s.attachFn != nil {
		return s.attachFn(ctx, productID, courseID)
	}
	return nil
}

func (s *stubStore) DetachCourse(ctx context.Context, productID, courseID uuid.UUID) (bool, error) {
	if s.detachFn != nil {
		return s.detachFn(ctx, productID, courseID)
	}
	return false, nil
}

func TestGrantForProductGrantsEveryCourse(t *testing.T) {
	courseA, courseB := uuid.New(), uuid.New()
	var granted []uuid.UUID
	store := &stubStore{
		findCourseIDsFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{courseA, courseB}, nil
		},
		grantFn: func(_ context.Context, _, courseID uuid.UUID, _ *uuid.UUID) error {
			granted = append(granted, courseID)
			return nil
		},
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.GrantForProduct(context.Background(), uuid.New(), uuid.New(), nil); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(granted) != 2 {
		t.Fatalf("expected 2 grants got %d", len(granted))
	}
}

func TestGrantForProductCollectsPartialFailures(t *testing.T) {
	courseA, courseB := uuid.New(), uuid.New()
	store := &stubStore{
		findCourseIDsFn: func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{courseA, courseB}, nil
		},
		grantFn: func(_ context.Context, _, courseID uuid.UUID, _ *uuid.UUID) error {
			if courseID == courseA {
				return errors.New("insert failed")
			}
			return nil
		},
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	err = svc.GrantForProduct(context.Background(), uuid.New(), uuid.New(), nil)
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if len(multierr.Errors(errors.Unwrap(err))) != 1 {
		t.Fatalf("expected one collected failure, got %v", err)
	}
}

func TestGrantForProductNoCoursesIsNoOp(t *testing.T) {
	var grants int
	store := &stubStore{
		grantFn: func(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID) error {
			grants++
			return nil
		},
	}
	svc, err := NewService(store)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.GrantForProduct(context.Background(), uuid.New(), uuid.New(), nil); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if grants != 0 {
		t.Fatalf("expected no grants got %d", grants)
	}
}
