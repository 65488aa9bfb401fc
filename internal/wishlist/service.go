package wishlist

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Store defines the persistence operations the service needs.
type Store interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListItems(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.WishlistItem, string, error)
}

// ProductFinder vets additions against the catalog.
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the shopper's wishlist operations.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.WishlistItem, string, error)
	Add(ctx context.Context, userID, productID uuid.UUID) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

type service struct {
	repo     Store
	products ProductFinder
}

// NewService builds the wishlist service with its required dependencies.
func NewService(repo Store, products ProductFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.WishlistItem, string, error) {
	rows, next, err := s.repo.ListItems(ctx, userID, cursor, limit)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wishlist")
	}
	return rows, next, nil
}

// Add likes a product. Re-liking is a no-op, not an error.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if err := s.repo.AddItem(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add wishlist item")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.repo.RemoveItem(ctx, userID, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove wishlist item")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wishlist item not found")
	}
	return nil
}
