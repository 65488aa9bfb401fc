package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/api/middleware"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	couponsvc "github.com/storefrontlabs/storefront-backend/internal/coupons"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type stubCouponAPI struct {
	validateFn func(ctx context.Context, code string, lines []couponsvc.CartLine) (*couponsvc.Evaluation, error)
}

func (s *stubCouponAPI) Validate(ctx context.Context, code string, lines []couponsvc.CartLine) (*couponsvc.Evaluation, error) {
	return s.validateFn(ctx, code, lines)
}

func (s *stubCouponAPI) Redeem(ctx context.Context, tx *gorm.DB, coupon models.Coupon) error {
	return nil
}

func (s *stubCouponAPI) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	return nil, nil
}

func (s *stubCouponAPI) List(ctx context.Context, cursor string, limit int) ([]models.Coupon, string, error) {
	return nil, "", nil
}

func (s *stubCouponAPI) Create(ctx context.Context, input couponsvc.CreateCouponInput) (*models.Coupon, error) {
	return nil, nil
}

func (s *stubCouponAPI) Update(ctx context.Context, id uuid.UUID, input couponsvc.UpdateCouponInput) (*models.Coupon, error) {
	return nil, nil
}

func (s *stubCouponAPI) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubCartAPI struct {
	getFn func(ctx context.Context, userID uuid.UUID) (*cartsvc.Summary, error)
	addFn func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.Summary, error)
}

func (s *stubCartAPI) Get(ctx context.Context, userID uuid.UUID) (*cartsvc.Summary, error) {
	return s.getFn(ctx, userID)
}

func (s *stubCartAPI) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.Summary, error) {
	return s.addFn(ctx, userID, productID, quantity)
}

func (s *stubCartAPI) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.Summary, error) {
	return nil, nil
}

func (s *stubCartAPI) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*cartsvc.Summary, error) {
	return nil, nil
}

func (s *stubCartAPI) Clear(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func authedRequest(method, target string, body *strings.Reader, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestCouponValidateSuccess(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()

	carts := &stubCartAPI{
		getFn: func(ctx context.Context, gotUser uuid.UUID) (*cartsvc.Summary, error) {
			if gotUser != userID {
				t.Fatalf("unexpected user %s", gotUser)
			}
			return &cartsvc.Summary{
				Items: []models.CartItem{{
					ProductID: productID,
					Quantity:  1,
					Product:   &models.Product{ID: productID, Price: decimal.RequireFromString("200"), IsActive: true},
				}},
				Subtotal: decimal.RequireFromString("200"),
			}, nil
		},
	}
	coupons := &stubCouponAPI{
		validateFn: func(ctx context.Context, code string, lines []couponsvc.CartLine) (*couponsvc.Evaluation, error) {
			if code != "SAVE10" {
				t.Fatalf("unexpected code %q", code)
			}
			if len(lines) != 1 || !lines[0].UnitPrice.Equal(decimal.RequireFromString("200")) {
				t.Fatalf("expected priced cart lines, got %+v", lines)
			}
			return &couponsvc.Evaluation{
				Coupon:               models.Coupon{ID: uuid.New(), Code: "SAVE10"},
				DiscountAmount:       decimal.RequireFromString("20"),
				ApplicableProductIDs: []uuid.UUID{productID},
				ApplicableTotal:      decimal.RequireFromString("200"),
			}, nil
		},
	}
	handler := CouponValidate(coupons, carts, nil)

	req := authedRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"code":"SAVE10"}`), userID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Valid          bool   `json:"valid"`
			DiscountAmount string `json:"discount_amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Valid || envelope.Data.DiscountAmount != "20" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestCouponValidateUnknownCode(t *testing.T) {
	userID := uuid.New()
	carts := &stubCartAPI{
		getFn: func(ctx context.Context, userID uuid.UUID) (*cartsvc.Summary, error) {
			return &cartsvc.Summary{Subtotal: decimal.Zero}, nil
		},
	}
	coupons := &stubCouponAPI{
		validateFn: func(ctx context.Context, code string, lines []couponsvc.CartLine) (*couponsvc.Evaluation, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found").
				WithDetails(map[string]string{"reason": couponsvc.ReasonNotFound})
		},
	}
	handler := CouponValidate(coupons, carts, nil)

	req := authedRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"code":"NOPE"}`), userID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Details["reason"] != couponsvc.ReasonNotFound {
		t.Fatalf("expected not_found reason, got %+v", envelope.Error.Details)
	}
}

func TestCouponValidateRequiresAuth(t *testing.T) {
	handler := CouponValidate(&stubCouponAPI{}, &stubCartAPI{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", strings.NewReader(`{"code":"SAVE10"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
