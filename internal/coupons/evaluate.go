package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Failure reasons surfaced in the error details payload.
const (
	ReasonNotFound          = "not_found"
	ReasonInactive          = "inactive"
	ReasonExpired           = "expired"
	ReasonNoApplicableItems = "no_applicable_items"
	ReasonBelowMinimum      = "below_minimum"
	ReasonLimitReached      = "limit_reached"
)

// CartLine is one priced line of the cart snapshot a coupon is evaluated
// against. Prices are server-derived, never taken from the request body.
type CartLine struct {
	ProductID  uuid.UUID
	CategoryID *uuid.UUID
	UnitPrice  decimal.Decimal
	Quantity   int
}

// Subtotal returns the line value at its effective unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Evaluation is a successful coupon check: the discount and the lines it
// was computed against.
type Evaluation struct {
	Coupon               models.Coupon
	DiscountAmount       decimal.Decimal
	ApplicableProductIDs []uuid.UUID
	ApplicableTotal      decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Evaluate runs the eligibility pipeline for a coupon against a cart
// snapshot. It never mutates state; used_count bookkeeping happens at
// redemption time in checkout.
func Evaluate(coupon models.Coupon, lines []CartLine, now time.Time) (Evaluation, error) {
	if !coupon.IsActive {
		return Evaluation{}, failure(ReasonInactive, "coupon is not active")
	}
	if !now.Before(coupon.ExpiresAt) {
		return Evaluation{}, failure(ReasonExpired, "coupon has expired")
	}

	applicable := resolveScope(coupon, lines)
	if len(applicable) == 0 {
		return Evaluation{}, failure(ReasonNoApplicableItems, "coupon does not apply to any cart item")
	}

	applicableTotal := decimal.Zero
	ids := make([]uuid.UUID, 0, len(applicable))
	for _, line := range applicable {
		applicableTotal = applicableTotal.Add(line.Subtotal())
		ids = append(ids, line.ProductID)
	}

	if applicableTotal.LessThan(coupon.MinOrderAmount) {
		return Evaluation{}, failure(ReasonBelowMinimum, "order amount below coupon minimum")
	}

	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return Evaluation{}, failure(ReasonLimitReached, "coupon usage limit reached")
	}

	discount := computeDiscount(coupon, applicableTotal)

	return Evaluation{
		Coupon:               coupon,
		DiscountAmount:       discount,
		ApplicableProductIDs: ids,
		ApplicableTotal:      applicableTotal,
	}, nil
}

// resolveScope picks the applicable lines with first-match-wins precedence:
// explicit product ids, then categories, then the whole cart.
func resolveScope(coupon models.Coupon, lines []CartLine) []CartLine {
	if len(coupon.ApplicableProducts) > 0 {
		allowed := toSet(coupon.ApplicableProducts)
		matched := make([]CartLine, 0, len(lines))
		for _, line := range lines {
			if _, ok := allowed[line.ProductID.String()]; ok {
				matched = append(matched, line)
			}
		}
		return matched
	}

	if len(coupon.ApplicableCategories) > 0 {
		allowed := toSet(coupon.ApplicableCategories)
		matched := make([]CartLine, 0, len(lines))
		for _, line := range lines {
			if line.CategoryID == nil {
				continue
			}
			if _, ok := allowed[line.CategoryID.String()]; ok {
				matched = append(matched, line)
			}
		}
		return matched
	}

	return lines
}

func computeDiscount(coupon models.Coupon, applicableTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = applicableTotal.Mul(coupon.DiscountValue).Div(oneHundred)
		if coupon.MaxDiscountAmount != nil && discount.GreaterThan(*coupon.MaxDiscountAmount) {
			discount = *coupon.MaxDiscountAmount
		}
	case enums.DiscountTypeFixed:
		discount = coupon.DiscountValue
	}

	// Never discount more than the value the coupon applies to.
	if discount.GreaterThan(applicableTotal) {
		discount = applicableTotal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return discount
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func failure(reason, message string) *pkgerrors.Error {
	code := pkgerrors.CodeValidation
	if reason == ReasonNotFound {
		code = pkgerrors.CodeNotFound
	}
	return pkgerrors.New(code, message).WithDetails(map[string]string{"reason": reason})
}

// FailureReason extracts the machine-readable reason from an evaluation
// error, or "" when the error carries none.
func FailureReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return ""
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		return ""
	}
	return details["reason"]
}
