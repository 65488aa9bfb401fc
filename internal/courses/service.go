package courses

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Store defines the persistence operations the service needs.
type Store interface {
	FindCourseIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	Grant(ctx context.Context, userID, courseID uuid.UUID, orderID *uuid.UUID) error
	ListUserCourses(ctx context.Context, userID uuid.UUID) ([]models.UserCourse, error)
	AttachCourse(ctx context.Context, productID, courseID uuid.UUID) error
	DetachCourse(ctx context.Context, productID, courseID uuid.UUID) (bool, error)
}

// Service exposes course grants and product-course administration.
type Service interface {
	GrantForProduct(ctx context.Context, userID, productID uuid.UUID, orderID *uuid.UUID) error
	ListUserCourses(ctx context.Context, userID uuid.UUID) ([]models.UserCourse, error)
	Attach(ctx context.Context, productID, courseID uuid.UUID) error
	Detach(ctx context.Context, productID, courseID uuid.UUID) error
}

type service struct {
	repo Store
}

// NewService builds the course service with its required dependencies.
func NewService(repo Store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("course repository required")
	}
	return &service{repo: repo}, nil
}

// GrantForProduct grants every course the product unlocks. Individual grant
// failures are collected so the caller can log them without losing the rest.
func (s *service) GrantForProduct(ctx context.Context, userID, productID uuid.UUID, orderID *uuid.UUID) error {
	courseIDs, err := s.repo.FindCourseIDsByProduct(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product courses")
	}

	var grantErr error
	for _, courseID := range courseIDs {
		if err := s.repo.Grant(ctx, userID, courseID, orderID); err != nil {
			grantErr = multierr.Append(grantErr, fmt.Errorf("grant course %s: %w", courseID, err))
		}
	}
	if grantErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, grantErr, "grant courses")
	}
	return nil
}

func (s *service) ListUserCourses(ctx context.Context, userID uuid.UUID) ([]models.UserCourse, error) {
	rows, err := s.repo.ListUserCourses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user courses")
	}
	return rows, nil
}

func (s *service) Attach(ctx context.Context, productID, courseID uuid.UUID) error {
	if err := s.repo.AttachCourse(ctx, productID, courseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach course")
	}
	return nil
}

func (s *service) Detach(ctx context.Context, productID, courseID uuid.UUID) error {
	detached, err := s.repo.DetachCourse(ctx, productID, courseID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "detach course")
	}
	if !detached {
		return pkgerrors.New(pkgerrors.CodeNotFound, "course association not found")
	}
	return nil
}
