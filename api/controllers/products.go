package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	productsvc "github.com/storefrontlabs/storefront-backend/internal/products"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

// ProductsList returns a cursor page of the catalog. The public listing only
// shows active products; admins pass include_inactive=true to see the rest.
func ProductsList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters := productsvc.ListFilters{
			ActiveOnly: !strings.EqualFold(r.URL.Query().Get("include_inactive"), "true"),
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			categoryID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			filters.CategoryID = &categoryID
		}

		rows, next, err := svc.List(ctx, cursorParam(r), limit, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"products":    rows,
			"next_cursor": next,
		})
	}
}

// ProductGet returns one product with its category.
func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Get(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	Name              string   `json:"name" validate:"required,max=200"`
	Description       *string  `json:"description,omitempty"`
	CategoryID        *string  `json:"category_id,omitempty"`
	Price             string   `json:"price" validate:"required"`
	DiscountPercent   *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	ImageURL          *string  `json:"image_url,omitempty"`
	IsActive          *bool    `json:"is_active,omitempty"`
	StockQuantity     int      `json:"stock_quantity" validate:"min=0"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	TrackStock        *bool    `json:"track_stock,omitempty"`
}

func (req createProductRequest) toInput() (productsvc.CreateProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.CategoryID))
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		categoryID = &parsed
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	trackStock := true
	if req.TrackStock != nil {
		trackStock = *req.TrackStock
	}

	return productsvc.CreateProductInput{
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		CategoryID:        categoryID,
		Price:             price,
		DiscountPercent:   req.DiscountPercent,
		ImageURL:          req.ImageURL,
		IsActive:          isActive,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		TrackStock:        trackStock,
	}, nil
}

// AdminCreateProduct adds a catalog listing.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description       *string  `json:"description,omitempty"`
	CategoryID        *string  `json:"category_id,omitempty"`
	Price             *string  `json:"price,omitempty"`
	DiscountPercent   *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	ImageURL          *string  `json:"image_url,omitempty"`
	IsActive          *bool    `json:"is_active,omitempty"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty" validate:"omitempty,min=0"`
	TrackStock        *bool    `json:"track_stock,omitempty"`
}

func (req updateProductRequest) toInput() (productsvc.UpdateProductInput, error) {
	input := productsvc.UpdateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		DiscountPercent:   req.DiscountPercent,
		ImageURL:          req.ImageURL,
		IsActive:          req.IsActive,
		LowStockThreshold: req.LowStockThreshold,
		TrackStock:        req.TrackStock,
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*req.Price))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		input.Price = &price
	}
	if req.CategoryID != nil && strings.TrimSpace(*req.CategoryID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.CategoryID))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &parsed
	}
	return input, nil
}

// AdminUpdateProduct applies a sparse patch to a listing.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		product, err := svc.Update(ctx, productID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a listing.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, productID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type adjustStockRequest struct {
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation" validate:"required,oneof=add subtract set"`
}

// AdminAdjustStock applies one bounded mutation to a product's stock counter.
func AdminAdjustStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		op, err := enums.ParseStockOperation(strings.TrimSpace(payload.Operation))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock operation"))
			return
		}

		adjustment, err := svc.AdjustStock(ctx, productsvc.StockAdjustmentInput{
			ProductID: productID,
			Quantity:  payload.Quantity,
			Operation: op,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"product":      adjustment.Product,
			"new_quantity": adjustment.NewQuantity,
			"is_low_stock": adjustment.IsLowStock,
		})
	}
}
