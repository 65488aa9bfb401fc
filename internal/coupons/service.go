package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
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
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, cursor string, limit int) ([]models.Coupon, string, error)
	IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes coupon validation for shoppers and CRUD for admins.
type Service interface {
	Validate(ctx context.Context, code string, lines []CartLine) (*Evaluation, error)
	Redeem(ctx context.Context, tx *gorm.DB, coupon models.Coupon) error
	Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context, cursor string, limit int) ([]models.Coupon, string, error)
	Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateCouponInput carries the admin-supplied coupon definition.
type CreateCouponInput struct {
	Code                 string
	Description          *string
	DiscountType         enums.DiscountType
	DiscountValue        decimal.Decimal
	MinOrderAmount       decimal.Decimal
	MaxDiscountAmount    *decimal.Decimal
	UsageLimit           *int
	IsActive             bool
	ExpiresAt            time.Time
	ApplicableProducts   []string
	ApplicableCategories []string
}

// UpdateCouponInput is a sparse patch; nil fields are left untouched.
type UpdateCouponInput struct {
	Description          *string
	DiscountType         *enums.DiscountType
	DiscountValue        *decimal.Decimal
	MinOrderAmount       *decimal.Decimal
	MaxDiscountAmount    *decimal.Decimal
	UsageLimit           *int
	IsActive             *bool
	ExpiresAt            *time.Time
	ApplicableProducts   []string
	ApplicableCategories []string
}

type service struct {
	repo  Store
	cache *Cache
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds the coupon service with its required dependencies.
func NewService(repo Store, cache *Cache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{
		repo:  repo,
		cache: cache,
		logg:  logg,
		now:   time.Now,
	}, nil
}

// Validate resolves the code and runs the eligibility pipeline against the
// priced cart snapshot. Read-only; redemption happens in checkout.
func (s *service) Validate(ctx context.Context, code string, lines []CartLine) (*Evaluation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, err := s.lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, failure(ReasonNotFound, "coupon not found")
	}

	evaluation, err := Evaluate(*coupon, lines, s.now())
	if err != nil {
		return nil, err
	}
	return &evaluation, nil
}

func (s *service) lookup(ctx context.Context, code string) (*models.Coupon, error) {
	if cached, err := s.cache.Get(ctx, code); err != nil {
		s.warn(ctx, "coupon cache read failed", err)
	} else if cached != nil {
		return cached, nil
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return nil, nil
	}

	if err := s.cache.Put(ctx, coupon); err != nil {
		s.warn(ctx, "coupon cache write failed", err)
	}
	return coupon, nil
}

// Redeem bumps used_count inside the checkout transaction and drops the
// cached copy so the next validation sees the fresh counter.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, coupon models.Coupon) error {
	repo := s.repo
	if tx != nil {
		repo = s.repo.WithTx(tx)
	}
	ok, err := repo.IncrementUsage(ctx, coupon.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem coupon")
	}
	if !ok {
		return failure(ReasonLimitReached, "coupon usage limit reached")
	}
	if err := s.cache.Invalidate(ctx, coupon.Code); err != nil {
		s.warn(ctx, "coupon cache invalidation failed", err)
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	return coupon, nil
}

func (s *service) List(ctx context.Context, cursor string, limit int) ([]models.Coupon, string, error) {
	rows, next, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return rows, next, nil
}

func (s *service) Create(ctx context.Context, input CreateCouponInput) (*models.Coupon, error) {
	if err := validateDefinition(input.DiscountType, input.DiscountValue, input.MaxDiscountAmount, input.ExpiresAt); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	existing, err := s.repo.FindByCode(ctx, input.Code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check coupon code")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
	}

	coupon := &models.Coupon{
		Code:                 input.Code,
		Description:          input.Description,
		DiscountType:         input.DiscountType,
		DiscountValue:        input.DiscountValue,
		MinOrderAmount:       input.MinOrderAmount,
		MaxDiscountAmount:    input.MaxDiscountAmount,
		UsageLimit:           input.UsageLimit,
		IsActive:             input.IsActive,
		ExpiresAt:            input.ExpiresAt,
		ApplicableProducts:   pqArray(input.ApplicableProducts),
		ApplicableCategories: pqArray(input.ApplicableCategories),
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCouponInput) (*models.Coupon, error) {
	updates := map[string]any{}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.DiscountType != nil {
		if !input.DiscountType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
		}
		updates["discount_type"] = *input.DiscountType
	}
	if input.DiscountValue != nil {
		if input.DiscountValue.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount value must not be negative")
		}
		updates["discount_value"] = *input.DiscountValue
	}
	if input.MinOrderAmount != nil {
		updates["min_order_amount"] = *input.MinOrderAmount
	}
	if input.MaxDiscountAmount != nil {
		updates["max_discount_amount"] = *input.MaxDiscountAmount
	}
	if input.UsageLimit != nil {
		updates["usage_limit"] = *input.UsageLimit
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}
	if input.ApplicableProducts != nil {
		updates["applicable_products"] = pqArray(input.ApplicableProducts)
	}
	if input.ApplicableCategories != nil {
		updates["applicable_categories"] = pqArray(input.ApplicableCategories)
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}

	if err := s.cache.Invalidate(ctx, updated.Code); err != nil {
		s.warn(ctx, "coupon cache invalidation failed", err)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}

	if err := s.cache.Invalidate(ctx, coupon.Code); err != nil {
		s.warn(ctx, "coupon cache invalidation failed", err)
	}
	return nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil || err == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}

func validateDefinition(discountType enums.DiscountType, value decimal.Decimal, maxDiscount *decimal.Decimal, expiresAt time.Time) error {
	if !discountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount value must not be negative")
	}
	if maxDiscount != nil && discountType != enums.DiscountTypePercentage {
		return pkgerrors.New(pkgerrors.CodeValidation, "max discount applies to percentage coupons only")
	}
	if expiresAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry timestamp required")
	}
	return nil
}

func pqArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
