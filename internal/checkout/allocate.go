package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/internal/coupons"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

// Allocation is one cart line with its prorated share of the aggregate
// tax and shipping. Amounts keep full precision; rounding is left to
// presentation.
type Allocation struct {
	ProductID         uuid.UUID
	Quantity          int
	UnitPrice         decimal.Decimal
	ItemSubtotal      decimal.Decimal
	Proportion        decimal.Decimal
	AllocatedTax      decimal.Decimal
	AllocatedShipping decimal.Decimal
	DiscountAmount    decimal.Decimal
	FinalAmount       decimal.Decimal
}

// Allocate prorates tax and shipping across the cart by value share. When
// every line is free the proportional rule divides by zero, so the cost is
// split evenly instead. The sum of final amounts always equals
// subtotal + tax + shipping.
func Allocate(lines []coupons.CartLine, tax, shipping decimal.Decimal) ([]Allocation, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if tax.IsNegative() || shipping.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax and shipping must not be negative")
	}

	totalSubtotal := decimal.Zero
	for _, line := range lines {
		totalSubtotal = totalSubtotal.Add(line.Subtotal())
	}

	count := decimal.NewFromInt(int64(len(lines)))
	allocations := make([]Allocation, 0, len(lines))
	for _, line := range lines {
		subtotal := line.Subtotal()

		var proportion decimal.Decimal
		if totalSubtotal.IsPositive() {
			proportion = subtotal.Div(totalSubtotal)
		} else {
			proportion = decimal.NewFromInt(1).Div(count)
		}

		allocatedTax := tax.Mul(proportion)
		allocatedShipping := shipping.Mul(proportion)

		allocations = append(allocations, Allocation{
			ProductID:         line.ProductID,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice,
			ItemSubtotal:      subtotal,
			Proportion:        proportion,
			AllocatedTax:      allocatedTax,
			AllocatedShipping: allocatedShipping,
			FinalAmount:       subtotal.Add(allocatedTax).Add(allocatedShipping),
		})
	}
	return allocations, nil
}

// DistributeDiscount spreads the coupon discount across the applicable
// lines by their value share, then reduces each final amount. Lines outside
// the coupon's scope are untouched.
func DistributeDiscount(allocations []Allocation, discount decimal.Decimal, applicableIDs []uuid.UUID) []Allocation {
	if !discount.IsPositive() || len(allocations) == 0 {
		return allocations
	}

	applicable := make(map[uuid.UUID]struct{}, len(applicableIDs))
	for _, id := range applicableIDs {
		applicable[id] = struct{}{}
	}

	applicableTotal := decimal.Zero
	applicableCount := 0
	for _, alloc := range allocations {
		if _, ok := applicable[alloc.ProductID]; ok {
			applicableTotal = applicableTotal.Add(alloc.ItemSubtotal)
			applicableCount++
		}
	}
	if applicableCount == 0 {
		return allocations
	}

	count := decimal.NewFromInt(int64(applicableCount))
	for i := range allocations {
		if _, ok := applicable[allocations[i].ProductID]; !ok {
			continue
		}
		var share decimal.Decimal
		if applicableTotal.IsPositive() {
			share = discount.Mul(allocations[i].ItemSubtotal).Div(applicableTotal)
		} else {
			share = discount.Div(count)
		}
		if share.GreaterThan(allocations[i].FinalAmount) {
			share = allocations[i].FinalAmount
		}
		allocations[i].DiscountAmount = share
		allocations[i].FinalAmount = allocations[i].FinalAmount.Sub(share)
	}
	return allocations
}
