package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	cartsvc "github.com/storefrontlabs/storefront-backend/internal/cart"
	couponsvc "github.com/storefrontlabs/storefront-backend/internal/coupons"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
)

type validateCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

// CouponValidate prices the caller's coupon against their server-side cart.
// Prices come from the catalog snapshot in the cart, never from the client.
func CouponValidate(coupons couponsvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if coupons == nil || carts == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload validateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := carts.Get(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		evaluation, err := coupons.Validate(ctx, payload.Code, cartsvc.Lines(summary.Items))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"valid":                  true,
			"code":                   evaluation.Coupon.Code,
			"discount_amount":        evaluation.DiscountAmount,
			"applicable_product_ids": evaluation.ApplicableProductIDs,
			"applicable_total":       evaluation.ApplicableTotal,
		})
	}
}

// AdminCouponsList returns a cursor page of coupon definitions.
func AdminCouponsList(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, next, err := svc.List(ctx, cursorParam(r), limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"coupons":     rows,
			"next_cursor": next,
		})
	}
}

// AdminCouponGet returns one coupon definition.
func AdminCouponGet(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		coupon, err := svc.Get(ctx, couponID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

type createCouponRequest struct {
	Code                 string   `json:"code" validate:"required,max=64"`
	Description          *string  `json:"description,omitempty"`
	DiscountType         string   `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue        string   `json:"discount_value" validate:"required"`
	MinOrderAmount       *string  `json:"min_order_amount,omitempty"`
	MaxDiscountAmount    *string  `json:"max_discount_amount,omitempty"`
	UsageLimit           *int     `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	IsActive             *bool    `json:"is_active,omitempty"`
	ExpiresAt            string   `json:"expires_at" validate:"required"`
	ApplicableProducts   []string `json:"applicable_products,omitempty" validate:"omitempty,dive,uuid"`
	ApplicableCategories []string `json:"applicable_categories,omitempty" validate:"omitempty,dive,uuid"`
}

func (req createCouponRequest) toInput() (couponsvc.CreateCouponInput, error) {
	discountType, err := enums.ParseDiscountType(strings.TrimSpace(req.DiscountType))
	if err != nil {
		return couponsvc.CreateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
	}

	discountValue, err := decimal.NewFromString(strings.TrimSpace(req.DiscountValue))
	if err != nil {
		return couponsvc.CreateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount value")
	}

	minOrder := decimal.Zero
	if req.MinOrderAmount != nil {
		minOrder, err = decimal.NewFromString(strings.TrimSpace(*req.MinOrderAmount))
		if err != nil {
			return couponsvc.CreateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minimum order amount")
		}
	}

	var maxDiscount *decimal.Decimal
	if req.MaxDiscountAmount != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.MaxDiscountAmount))
		if err != nil {
			return couponsvc.CreateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maximum discount amount")
		}
		maxDiscount = &parsed
	}

	expiresAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ExpiresAt))
	if err != nil {
		return couponsvc.CreateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiry timestamp")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	return couponsvc.CreateCouponInput{
		Code:                 strings.TrimSpace(req.Code),
		Description:          req.Description,
		DiscountType:         discountType,
		DiscountValue:        discountValue,
		MinOrderAmount:       minOrder,
		MaxDiscountAmount:    maxDiscount,
		UsageLimit:           req.UsageLimit,
		IsActive:             isActive,
		ExpiresAt:            expiresAt,
		ApplicableProducts:   req.ApplicableProducts,
		ApplicableCategories: req.ApplicableCategories,
	}, nil
}

// AdminCreateCoupon defines a new coupon.
func AdminCreateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload createCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		coupon, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

type updateCouponRequest struct {
	Description          *string  `json:"description,omitempty"`
	DiscountType         *string  `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue        *string  `json:"discount_value,omitempty"`
	MinOrderAmount       *string  `json:"min_order_amount,omitempty"`
	MaxDiscountAmount    *string  `json:"max_discount_amount,omitempty"`
	UsageLimit           *int     `json:"usage_limit,omitempty" validate:"omitempty,min=1"`
	IsActive             *bool    `json:"is_active,omitempty"`
	ExpiresAt            *string  `json:"expires_at,omitempty"`
	ApplicableProducts   []string `json:"applicable_products,omitempty" validate:"omitempty,dive,uuid"`
	ApplicableCategories []string `json:"applicable_categories,omitempty" validate:"omitempty,dive,uuid"`
}

func (req updateCouponRequest) toInput() (couponsvc.UpdateCouponInput, error) {
	input := couponsvc.UpdateCouponInput{
		Description:          req.Description,
		UsageLimit:           req.UsageLimit,
		IsActive:             req.IsActive,
		ApplicableProducts:   req.ApplicableProducts,
		ApplicableCategories: req.ApplicableCategories,
	}

	if req.DiscountType != nil {
		parsed, err := enums.ParseDiscountType(strings.TrimSpace(*req.DiscountType))
		if err != nil {
			return couponsvc.UpdateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type")
		}
		input.DiscountType = &parsed
	}
	if req.DiscountValue != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.DiscountValue))
		if err != nil {
			return couponsvc.UpdateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount value")
		}
		input.DiscountValue = &parsed
	}
	if req.MinOrderAmount != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.MinOrderAmount))
		if err != nil {
			return couponsvc.UpdateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minimum order amount")
		}
		input.MinOrderAmount = &parsed
	}
	if req.MaxDiscountAmount != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*req.MaxDiscountAmount))
		if err != nil {
			return couponsvc.UpdateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maximum discount amount")
		}
		input.MaxDiscountAmount = &parsed
	}
	if req.ExpiresAt != nil {
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.ExpiresAt))
		if err != nil {
			return couponsvc.UpdateCouponInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid expiry timestamp")
		}
		input.ExpiresAt = &parsed
	}
	return input, nil
}

// AdminUpdateCoupon applies a sparse patch to a coupon definition.
func AdminUpdateCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		coupon, err := svc.Update(ctx, couponID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

// AdminDeleteCoupon removes a coupon definition.
func AdminDeleteCoupon(svc couponsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		couponID, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, couponID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
