package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// Order is one checkout line persisted as its own row. Tax and shipping are
// the shares prorated onto this line by the allocator.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	ProductID         uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	Quantity          int               `gorm:"column:quantity;not null"`
	UnitPrice         decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ItemSubtotal      decimal.Decimal   `gorm:"column:item_subtotal;type:numeric(12,2);not null"`
	AllocatedTax      decimal.Decimal   `gorm:"column:allocated_tax;type:numeric(12,4);not null;default:0"`
	AllocatedShipping decimal.Decimal   `gorm:"column:allocated_shipping;type:numeric(12,4);not null;default:0"`
	DiscountAmount    decimal.Decimal   `gorm:"column:discount_amount;type:numeric(12,2);not null;default:0"`
	TotalAmount       decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,4);not null"`
	CouponID          *uuid.UUID        `gorm:"column:coupon_id;type:uuid"`
	Status            enums.OrderStatus `gorm:"column:status;type:text;not null;default:'processing'"`
	PaymentReference  string            `gorm:"column:payment_reference;not null"`
	ShippingAddress   *types.Address    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Product           *Product          `gorm:"foreignKey:ProductID"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
