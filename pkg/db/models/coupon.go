package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// Coupon is the admin-managed discount definition consumed read-only by the
// evaluator. Codes are stored upper-cased; lookups normalize before matching.
type Coupon struct {
	ID                   uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code                 string             `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Description          *string            `gorm:"column:description"`
	DiscountType         enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue        decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null"`
	MinOrderAmount       decimal.Decimal    `gorm:"column:min_order_amount;type:numeric(12,2);not null;default:0"`
	MaxDiscountAmount    *decimal.Decimal   `gorm:"column:max_discount_amount;type:numeric(12,2)"`
	UsageLimit           *int               `gorm:"column:usage_limit"`
	UsedCount            int                `gorm:"column:used_count;not null;default:0"`
	IsActive             bool               `gorm:"column:is_active;not null;default:true"`
	ExpiresAt            time.Time          `gorm:"column:expires_at;not null"`
	ApplicableProducts   pq.StringArray     `gorm:"column:applicable_products;type:text[];not null;default:ARRAY[]::text[]"`
	ApplicableCategories pq.StringArray     `gorm:"column:applicable_categories;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt            time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
