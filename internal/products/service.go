package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// Store defines the persistence operations the service needs.
type Store interface {
	WithTx(tx *gorm.DB) *Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	List(ctx context.Context, cursor string, limit int, filters ListFilters) ([]models.Product, string, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	AdjustStock(ctx context.Context, id uuid.UUID, quantity int, op enums.StockOperation) (*StockResult, error)
}

// Service exposes catalog CRUD plus the bounded stock mutations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, cursor string, limit int, filters ListFilters) ([]models.Product, string, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, input StockAdjustmentInput) (*StockAdjustment, error)
}

// CreateProductInput carries the admin-supplied listing definition.
type CreateProductInput struct {
	Name              string
	Description       *string
	CategoryID        *uuid.UUID
	Price             decimal.Decimal
	DiscountPercent   *float64
	ImageURL          *string
	IsActive          bool
	StockQuantity     int
	LowStockThreshold *int
	TrackStock        bool
}

// UpdateProductInput is a sparse patch; nil fields are left untouched.
type UpdateProductInput struct {
	Name              *string
	Description       *string
	CategoryID        *uuid.UUID
	Price             *decimal.Decimal
	DiscountPercent   *float64
	ImageURL          *string
	IsActive          *bool
	LowStockThreshold *int
	TrackStock        *bool
}

// StockAdjustmentInput names the product, the operation, and its operand.
type StockAdjustmentInput struct {
	ProductID uuid.UUID
	Quantity  int
	Operation enums.StockOperation
}

// StockAdjustment reports the post-mutation counter state.
type StockAdjustment struct {
	Product     *models.Product
	NewQuantity int
	IsLowStock  bool
}

type service struct {
	repo Store
	logg *logger.Logger
}

// NewService builds the product service with its required dependencies.
func NewService(repo Store, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, cursor string, limit int, filters ListFilters) ([]models.Product, string, error) {
	rows, next, err := s.repo.List(ctx, cursor, limit, filters)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, next, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if err := validateDiscountPercent(input.DiscountPercent); err != nil {
		return nil, err
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must not be negative")
	}

	product := &models.Product{
		Name:            strings.TrimSpace(input.Name),
		Description:     input.Description,
		CategoryID:      input.CategoryID,
		Price:           input.Price,
		DiscountPercent: input.DiscountPercent,
		ImageURL:        input.ImageURL,
		IsActive:        input.IsActive,
		StockQuantity:   input.StockQuantity,
		TrackStock:      input.TrackStock,
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold must not be negative")
		}
		product.LowStockThreshold = *input.LowStockThreshold
	} else {
		product.LowStockThreshold = 5
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price"] = *input.Price
	}
	if input.DiscountPercent != nil {
		if err := validateDiscountPercent(input.DiscountPercent); err != nil {
			return nil, err
		}
		updates["discount_percent"] = *input.DiscountPercent
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.LowStockThreshold != nil {
		if *input.LowStockThreshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "low stock threshold must not be negative")
		}
		updates["low_stock_threshold"] = *input.LowStockThreshold
	}
	if input.TrackStock != nil {
		updates["track_stock"] = *input.TrackStock
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// AdjustStock validates the request against the current record, then applies
// the mutation as one conditional update so concurrent adjustments cannot
// lose writes.
func (s *service) AdjustStock(ctx context.Context, input StockAdjustmentInput) (*StockAdjustment, error) {
	if !input.Operation.IsValid() {
		return nil, stockFailure(StockReasonInvalidOperation, "unknown stock operation")
	}
	if input.Quantity < 0 && input.Operation != enums.StockOperationSet {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}

	product, err := s.repo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, stockFailure(StockReasonNotFound, "product not found")
	}
	if !product.TrackStock {
		return nil, stockFailure(StockReasonTrackingDisabled, "stock tracking disabled for product")
	}

	result, err := s.repo.AdjustStock(ctx, input.ProductID, input.Quantity, input.Operation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}
	if result == nil {
		// Row disappeared or tracking flipped between read and write.
		return nil, stockFailure(StockReasonNotFound, "product not found")
	}

	product.StockQuantity = result.NewQuantity
	if result.IsLowStock && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"product_id":     product.ID.String(),
			"stock_quantity": result.NewQuantity,
			"threshold":      product.LowStockThreshold,
		})
		s.logg.Warn(logCtx, "product stock at or below threshold")
	}

	return &StockAdjustment{
		Product:     product,
		NewQuantity: result.NewQuantity,
		IsLowStock:  result.IsLowStock,
	}, nil
}

func validateDiscountPercent(value *float64) error {
	if value == nil {
		return nil
	}
	if *value < 0 || *value > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	return nil
}
