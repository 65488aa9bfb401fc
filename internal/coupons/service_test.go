package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type stubStore struct {
	findByCodeFn     func(ctx context.Context, code string) (*models.Coupon, error)
	findByIDFn       func(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	createFn         func(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	updateFn         func(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Coupon, error)
	deleteFn         func(ctx context.Context, id uuid.UUID) (bool, error)
	listFn           func(ctx context.Context, cursor string, limit int) ([]models.Coupon, string, error)
	incrementUsageFn func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (s *stubStore) WithTx(tx *gorm.DB) *Repository { return nil }

func (s *stubStore) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if s.findByCodeFn != nil {
		return s.findByCodeFn(ctx, code)
	}
	return nil, nil
}

func (s *stubStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (s *stubStore) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if s.createFn != nil {
		return s.createFn(ctx, coupon)
	}
	return coupon, nil
}

func (s *stubStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Coupon, error) {
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

func (s *stubStore) List(ctx context.Context, cursor string, limit int) ([]models.Coupon, string, error) {
	if s.listFn != nil {
		return s.listFn(ctx, cursor, limit)
	}
	return nil, "", nil
}

func (s *stubStore) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.incrementUsageFn != nil {
		return s.incrementUsageFn(ctx, id)
	}
	return true, nil
}

func newTestService(t *testing.T, store Store) Service {
	t.Helper()
	svc, err := NewService(store, nil, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestValidateLooksUpCaseInsensitively(t *testing.T) {
	coupon := activeCoupon(enums.DiscountTypePercentage, "10")
	var requested string
	store := &stubStore{
		findByCodeFn: func(_ context.Context, code string) (*models.Coupon, error) {
			requested = code
			return &coupon, nil
		},
	}
	svc := newTestService(t, store)

	result, err := svc.Validate(context.Background(), "  save10 ", []CartLine{line("200", 1)})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if requested != "save10" {
		t.Fatalf("expected trimmed code passed to store, got %q", requested)
	}
	if !result.DiscountAmount.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("expected discount 20 got %s", result.DiscountAmount)
	}
}

func TestValidateUnknownCodeIsNotFound(t *testing.T) {
	svc := newTestService(t, &stubStore{})

	_, err := svc.Validate(context.Background(), "MISSING", []CartLine{line("100", 1)})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error got %v", err)
	}
	if FailureReason(err) != ReasonNotFound {
		t.Fatalf("expected not_found reason got %v", err)
	}
}

func TestValidateEmptyCodeRejected(t *testing.T) {
	svc := newTestService(t, &stubStore{})

	_, err := svc.Validate(context.Background(), "   ", nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestRedeemSurfacesExhaustedLimit(t *testing.T) {
	store := &stubStore{
		incrementUsageFn: func(context.Context, uuid.UUID) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(t, store)

	err := svc.Redeem(context.Background(), nil, activeCoupon(enums.DiscountTypePercentage, "10"))
	if FailureReason(err) != ReasonLimitReached {
		t.Fatalf("expected limit reached got %v", err)
	}
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	existing := activeCoupon(enums.DiscountTypePercentage, "10")
	store := &stubStore{
		findByCodeFn: func(context.Context, string) (*models.Coupon, error) {
			return &existing, nil
		},
	}
	svc := newTestService(t, store)

	_, err := svc.Create(context.Background(), CreateCouponInput{
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: decimal.RequireFromString("10"),
		IsActive:      true,
		ExpiresAt:     time.Now().Add(time.Hour),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestCreateRejectsMaxDiscountOnFixedCoupons(t *testing.T) {
	svc := newTestService(t, &stubStore{})
	maxDiscount := decimal.RequireFromString("5")

	_, err := svc.Create(context.Background(), CreateCouponInput{
		Code:              "FLAT5",
		DiscountType:      enums.DiscountTypeFixed,
		DiscountValue:     decimal.RequireFromString("5"),
		MaxDiscountAmount: &maxDiscount,
		IsActive:          true,
		ExpiresAt:         time.Now().Add(time.Hour),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestUpdateMissingCouponIsNotFound(t *testing.T) {
	store := &stubStore{
		updateFn: func(context.Context, uuid.UUID, map[string]any) (*models.Coupon, error) {
			return nil, nil
		},
	}
	svc := newTestService(t, store)

	active := false
	_, err := svc.Update(context.Background(), uuid.New(), UpdateCouponInput{IsActive: &active})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found got %v", err)
	}
}
