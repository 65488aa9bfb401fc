package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/internal/cart"
	"github.com/storefrontlabs/storefront-backend/internal/coupons"
	"github.com/storefrontlabs/storefront-backend/internal/products"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
	"github.com/storefrontlabs/storefront-backend/pkg/logger"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// CartStore loads and clears the shopper's cart.
type CartStore interface {
	ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// CouponService is the slice of the coupon service checkout needs.
type CouponService interface {
	Validate(ctx context.Context, code string, lines []coupons.CartLine) (*coupons.Evaluation, error)
	Redeem(ctx context.Context, tx *gorm.DB, coupon models.Coupon) error
}

// OrderStore persists order rows, transactionally when tx is set.
type OrderStore interface {
	CreateTx(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Order, error)
}

// StockAdjuster applies the bounded stock mutations.
type StockAdjuster interface {
	AdjustStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int, op enums.StockOperation) (*products.StockResult, error)
}

// CourseGranter records course access after purchase.
type CourseGranter interface {
	GrantForProduct(ctx context.Context, userID, productID uuid.UUID, orderID *uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input is one checkout request. Tax and shipping are the order-level
// aggregates to prorate; prices always come from the catalog, never from
// the client.
type Input struct {
	UserID          uuid.UUID
	CouponCode      string
	Tax             decimal.Decimal
	Shipping        decimal.Decimal
	ShippingAddress *types.Address
}

// Result reports the created orders and the applied totals.
type Result struct {
	Orders           []models.Order
	PaymentReference string
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	Total            decimal.Decimal
}

// Service drives the checkout pipeline: price the cart, evaluate the
// coupon, prorate tax and shipping, write orders and stock decrements in
// one transaction, then run the best-effort post steps.
type Service interface {
	Execute(ctx context.Context, input Input) (*Result, error)
}

type service struct {
	carts    CartStore
	couponsS CouponService
	orders   OrderStore
	stock    StockAdjuster
	courses  CourseGranter
	tx       txRunner
	logg     *logger.Logger
}

// NewService builds the checkout service with its required dependencies.
func NewService(carts CartStore, couponSvc CouponService, orderStore OrderStore, stock StockAdjuster, courseSvc CourseGranter, tx txRunner, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if orderStore == nil {
		return nil, fmt.Errorf("order store required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock adjuster required")
	}
	if courseSvc == nil {
		return nil, fmt.Errorf("course granter required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		carts:    carts,
		couponsS: couponSvc,
		orders:   orderStore,
		stock:    stock,
		courses:  courseSvc,
		tx:       tx,
		logg:     logg,
	}, nil
}

func (s *service) Execute(ctx context.Context, input Input) (*Result, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	items, err := s.carts.ListItems(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	lines := cart.Lines(items)
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var evaluation *coupons.Evaluation
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		evaluation, err = s.couponsS.Validate(ctx, code, lines)
		if err != nil {
			return nil, err
		}
	}

	allocations, err := Allocate(lines, input.Tax, input.Shipping)
	if err != nil {
		return nil, err
	}

	discount := decimal.Zero
	if evaluation != nil {
		discount = evaluation.DiscountAmount
		allocations = DistributeDiscount(allocations, discount, evaluation.ApplicableProductIDs)
	}

	paymentReference := "PAY-" + uuid.NewString()

	var created []models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		// Order insertion is fail-fast: the first failure rolls back every
		// row and stock decrement written so far.
		for _, alloc := range allocations {
			order := &models.Order{
				UserID:            input.UserID,
				ProductID:         alloc.ProductID,
				Quantity:          alloc.Quantity,
				UnitPrice:         alloc.UnitPrice,
				ItemSubtotal:      alloc.ItemSubtotal,
				AllocatedTax:      alloc.AllocatedTax,
				AllocatedShipping: alloc.AllocatedShipping,
				DiscountAmount:    alloc.DiscountAmount,
				TotalAmount:       alloc.FinalAmount,
				Status:            enums.OrderStatusProcessing,
				PaymentReference:  paymentReference,
				ShippingAddress:   input.ShippingAddress,
			}
			if evaluation != nil {
				couponID := evaluation.Coupon.ID
				order.CouponID = &couponID
			}

			row, createErr := s.orders.CreateTx(ctx, tx, order)
			if createErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create order")
			}
			created = append(created, *row)

			if _, stockErr := s.stock.AdjustStockTx(ctx, tx, alloc.ProductID, alloc.Quantity, enums.StockOperationSubtract); stockErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, stockErr, "decrement stock")
			}
		}

		if evaluation != nil {
			if redeemErr := s.couponsS.Redeem(ctx, tx, evaluation.Coupon); redeemErr != nil {
				return redeemErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.grantCourses(ctx, input.UserID, created)
	s.clearCart(ctx, input.UserID)

	subtotal := decimal.Zero
	total := decimal.Zero
	for _, alloc := range allocations {
		subtotal = subtotal.Add(alloc.ItemSubtotal)
		total = total.Add(alloc.FinalAmount)
	}

	return &Result{
		Orders:           created,
		PaymentReference: paymentReference,
		Subtotal:         subtotal,
		DiscountAmount:   discount,
		Total:            total,
	}, nil
}

// grantCourses is best-effort: a failed grant is logged and never unwinds
// the purchase.
func (s *service) grantCourses(ctx context.Context, userID uuid.UUID, created []models.Order) {
	for _, order := range created {
		orderID := order.ID
		if err := s.courses.GrantForProduct(ctx, userID, order.ProductID, &orderID); err != nil && s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"order_id":   order.ID.String(),
				"product_id": order.ProductID.String(),
			})
			s.logg.Error(logCtx, "course grant failed", err)
		}
	}
}

// clearCart is best-effort: the orders already exist, a stale cart is
// only a cosmetic problem.
func (s *service) clearCart(ctx context.Context, userID uuid.UUID) {
	if err := s.carts.Clear(ctx, userID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "user_id", userID.String()), "cart clear failed", err)
	}
}
