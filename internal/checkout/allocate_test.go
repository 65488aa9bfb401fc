package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/internal/coupons"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

func cartLine(price string, quantity int) coupons.CartLine {
	return coupons.CartLine{
		ProductID: uuid.New(),
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  quantity,
	}
}

func TestAllocateProratesByValueShare(t *testing.T) {
	lines := []coupons.CartLine{cartLine("60", 1), cartLine("40", 1)}
	tax := decimal.RequireFromString("10")
	shipping := decimal.RequireFromString("5")

	allocations, err := Allocate(lines, tax, shipping)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(allocations) != 2 {
		t.Fatalf("expected 2 allocations got %d", len(allocations))
	}

	if !allocations[0].AllocatedTax.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected first line tax 6 got %s", allocations[0].AllocatedTax)
	}
	if !allocations[0].AllocatedShipping.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("expected first line shipping 3 got %s", allocations[0].AllocatedShipping)
	}
	if !allocations[1].AllocatedTax.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected second line tax 4 got %s", allocations[1].AllocatedTax)
	}
	if !allocations[1].AllocatedShipping.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected second line shipping 2 got %s", allocations[1].AllocatedShipping)
	}
}

func TestAllocateFinalAmountsSumToGrandTotal(t *testing.T) {
	lines := []coupons.CartLine{
		cartLine("19.99", 3),
		cartLine("7.49", 1),
		cartLine("120", 2),
	}
	tax := decimal.RequireFromString("23.17")
	shipping := decimal.RequireFromString("9.95")

	allocations, err := Allocate(lines, tax, shipping)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}

	subtotal := decimal.Zero
	sum := decimal.Zero
	for _, alloc := range allocations {
		subtotal = subtotal.Add(alloc.ItemSubtotal)
		sum = sum.Add(alloc.FinalAmount)
	}
	want := subtotal.Add(tax).Add(shipping)

	tolerance := decimal.RequireFromString("0.01")
	if sum.Sub(want).Abs().GreaterThan(tolerance) {
		t.Fatalf("final amounts sum to %s, want %s", sum, want)
	}
}

func TestAllocateSplitsEvenlyWhenSubtotalIsZero(t *testing.T) {
	lines := []coupons.CartLine{cartLine("0", 1), cartLine("0", 1)}
	tax := decimal.RequireFromString("10")
	shipping := decimal.RequireFromString("4")

	allocations, err := Allocate(lines, tax, shipping)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	for i, alloc := range allocations {
		if !alloc.AllocatedTax.Equal(decimal.RequireFromString("5")) {
			t.Fatalf("line %d: expected tax 5 got %s", i, alloc.AllocatedTax)
		}
		if !alloc.AllocatedShipping.Equal(decimal.RequireFromString("2")) {
			t.Fatalf("line %d: expected shipping 2 got %s", i, alloc.AllocatedShipping)
		}
	}
}

func TestAllocateEmptyCart(t *testing.T) {
	_, err := Allocate(nil, decimal.Zero, decimal.Zero)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestAllocateRejectsNegativeAggregates(t *testing.T) {
	lines := []coupons.CartLine{cartLine("10", 1)}
	_, err := Allocate(lines, decimal.RequireFromString("-1"), decimal.Zero)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestDistributeDiscountScopedLinesOnly(t *testing.T) {
	scoped := cartLine("60", 1)
	other := cartLine("40", 1)
	allocations, err := Allocate([]coupons.CartLine{scoped, other}, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	discounted := DistributeDiscount(allocations, decimal.RequireFromString("15"), []uuid.UUID{scoped.ProductID})

	if !discounted[0].DiscountAmount.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("expected scoped line to carry the discount, got %s", discounted[0].DiscountAmount)
	}
	if !discounted[0].FinalAmount.Equal(decimal.RequireFromString("45")) {
		t.Fatalf("expected scoped final 45 got %s", discounted[0].FinalAmount)
	}
	if !discounted[1].DiscountAmount.IsZero() {
		t.Fatalf("expected unscoped line untouched, got %s", discounted[1].DiscountAmount)
	}
}

func TestDistributeDiscountSpreadsProportionally(t *testing.T) {
	first := cartLine("60", 1)
	second := cartLine("40", 1)
	allocations, err := Allocate([]coupons.CartLine{first, second}, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}

	discounted := DistributeDiscount(allocations, decimal.RequireFromString("10"), []uuid.UUID{first.ProductID, second.ProductID})

	if !discounted[0].DiscountAmount.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("expected first discount 6 got %s", discounted[0].DiscountAmount)
	}
	if !discounted[1].DiscountAmount.Equal(decimal.RequireFromString("4")) {
		t.Fatalf("expected second discount 4 got %s", discounted[1].DiscountAmount)
	}
}
