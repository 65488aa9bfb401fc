package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/api/responses"
	"github.com/storefrontlabs/storefront-backend/api/validators"
	checkoutsvc "github.com/storefrontlabs/storefront-backend/internal/checkout"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

type checkoutAddressRequest struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country" validate:"required"`
}

type checkoutRequest struct {
	CouponCode      string                  `json:"coupon_code,omitempty" validate:"omitempty,max=64"`
	Tax             *string                 `json:"tax,omitempty"`
	Shipping        *string                 `json:"shipping,omitempty"`
	ShippingAddress *checkoutAddressRequest `json:"shipping_address,omitempty"`
}

func (req checkoutRequest) toInput() (checkoutsvc.Input, error) {
	input := checkoutsvc.Input{
		CouponCode: strings.TrimSpace(req.CouponCode),
		Tax:        decimal.Zero,
		Shipping:   decimal.Zero,
	}

	if req.Tax != nil {
		tax, err := decimal.NewFromString(strings.TrimSpace(*req.Tax))
		if err != nil {
			return checkoutsvc.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tax amount")
		}
		input.Tax = tax
	}
	if req.Shipping != nil {
		shipping, err := decimal.NewFromString(strings.TrimSpace(*req.Shipping))
		if err != nil {
			return checkoutsvc.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping amount")
		}
		input.Shipping = shipping
	}
	if req.ShippingAddress != nil {
		input.ShippingAddress = &types.Address{
			Line1:      strings.TrimSpace(req.ShippingAddress.Line1),
			Line2:      req.ShippingAddress.Line2,
			City:       strings.TrimSpace(req.ShippingAddress.City),
			State:      strings.TrimSpace(req.ShippingAddress.State),
			PostalCode: strings.TrimSpace(req.ShippingAddress.PostalCode),
			Country:    strings.TrimSpace(req.ShippingAddress.Country),
		}
	}
	return input, nil
}

// Checkout prices the caller's cart server-side, applies the optional
// coupon, and writes the resulting orders in one transaction.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.UserID = userID

		result, err := svc.Execute(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"orders":            result.Orders,
			"payment_reference": result.PaymentReference,
			"subtotal":          result.Subtotal,
			"discount_amount":   result.DiscountAmount,
			"total":             result.Total,
		})
	}
}
