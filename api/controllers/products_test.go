package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/storefrontlabs/storefront-backend/internal/products"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type stubProductService struct {
	getFn         func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	listFn        func(ctx context.Context, cursor string, limit int, filters productsvc.ListFilters) ([]models.Product, string, error)
	createFn      func(ctx context.Context, input productsvc.CreateProductInput) (*models.Product, error)
	updateFn      func(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*models.Product, error)
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	adjustStockFn func(ctx context.Context, input productsvc.StockAdjustmentInput) (*productsvc.StockAdjustment, error)
}

func (s *stubProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubProductService) List(ctx context.Context, cursor string, limit int, filters productsvc.ListFilters) ([]models.Product, string, error) {
	return s.listFn(ctx, cursor, limit, filters)
}

func (s *stubProductService) Create(ctx context.Context, input productsvc.CreateProductInput) (*models.Product, error) {
	return s.createFn(ctx, input)
}

func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateProductInput) (*models.Product, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubProductService) AdjustStock(ctx context.Context, input productsvc.StockAdjustmentInput) (*productsvc.StockAdjustment, error) {
	return s.adjustStockFn(ctx, input)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminAdjustStockSuccess(t *testing.T) {
	productID := uuid.New()
	svc := &stubProductService{
		adjustStockFn: func(ctx context.Context, input productsvc.StockAdjustmentInput) (*productsvc.StockAdjustment, error) {
			if input.ProductID != productID {
				t.Fatalf("unexpected product id %s", input.ProductID)
			}
			if input.Operation != enums.StockOperationSubtract || input.Quantity != 3 {
				t.Fatalf("unexpected adjustment %s %d", input.Operation, input.Quantity)
			}
			return &productsvc.StockAdjustment{
				Product:     &models.Product{ID: productID},
				NewQuantity: 0,
				IsLowStock:  true,
			}, nil
		},
	}
	handler := AdminAdjustStock(svc, nil)

	body := strings.NewReader(`{"quantity":3,"operation":"subtract"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products/"+productID.String()+"/stock", body)
	req = withURLParam(req, "productId", productID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			NewQuantity int  `json:"new_quantity"`
			IsLowStock  bool `json:"is_low_stock"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NewQuantity != 0 || !envelope.Data.IsLowStock {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestAdminAdjustStockRejectsUnknownOperation(t *testing.T) {
	productID := uuid.New()
	handler := AdminAdjustStock(&stubProductService{}, nil)

	body := strings.NewReader(`{"quantity":3,"operation":"increment"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/products/"+productID.String()+"/stock", body)
	req = withURLParam(req, "productId", productID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestProductGetNotFound(t *testing.T) {
	productID := uuid.New()
	svc := &stubProductService{
		getFn: func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		},
	}
	handler := ProductGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
	req = withURLParam(req, "productId", productID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestProductsListDefaultsToActiveOnly(t *testing.T) {
	svc := &stubProductService{
		listFn: func(ctx context.Context, cursor string, limit int, filters productsvc.ListFilters) ([]models.Product, string, error) {
			if !filters.ActiveOnly {
				t.Fatal("expected active-only listing by default")
			}
			return []models.Product{{ID: uuid.New()}}, "", nil
		},
	}
	handler := ProductsList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
