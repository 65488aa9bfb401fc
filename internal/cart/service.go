package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/coupons"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Store defines the persistence operations the service needs.
type Store interface {
	WithTx(tx *gorm.DB) *Repository
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	UpsertItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (bool, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProductFinder is the slice of the product store the cart needs to vet
// additions.
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Summary is the user's cart with its server-derived subtotal.
type Summary struct {
	Items    []models.CartItem
	Subtotal decimal.Decimal
}

// Service exposes the shopper's cart operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Summary, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Summary, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Summary, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Summary, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     Store
	products ProductFinder
}

// NewService builds the cart service with its required dependencies.
func NewService(repo Store, products ProductFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	return s.summary(ctx, userID)
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Summary, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is not available")
	}

	if err := s.repo.UpsertItem(ctx, userID, productID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
	}
	return s.summary(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Summary, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	updated, err := s.repo.SetItemQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.summary(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Summary, error) {
	removed, err := s.repo.RemoveItem(ctx, userID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return s.summary(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	items, err := s.repo.ListItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return &Summary{Items: items, Subtotal: Subtotal(items)}, nil
}

// Subtotal sums every line at its effective unit price.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Lines converts cart rows into the priced snapshot the coupon evaluator
// and checkout allocator consume. Lines without a loaded product are
// dropped; callers treat that as a stale cart.
func Lines(items []models.CartItem) []coupons.CartLine {
	lines := make([]coupons.CartLine, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, coupons.CartLine{
			ProductID:  item.ProductID,
			CategoryID: item.Product.CategoryID,
			UnitPrice:  item.Product.EffectiveUnitPrice(),
			Quantity:   item.Quantity,
		})
	}
	return lines
}
