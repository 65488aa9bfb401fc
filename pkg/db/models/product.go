package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a storefront listing with its stock counter.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Description       *string         `gorm:"column:description"`
	CategoryID        *uuid.UUID      `gorm:"column:category_id;type:uuid"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercent   *float64        `gorm:"column:discount_percent;type:numeric(5,2)"`
	ImageURL          *string         `gorm:"column:image_url"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	StockQuantity     int             `gorm:"column:stock_quantity;not null;default:0"`
	LowStockThreshold int             `gorm:"column:low_stock_threshold;not null;default:5"`
	TrackStock        bool            `gorm:"column:track_stock;not null;default:true"`
	Category          *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectiveUnitPrice applies the listing-level discount percent, if any.
func (p Product) EffectiveUnitPrice() decimal.Decimal {
	if p.DiscountPercent == nil || *p.DiscountPercent <= 0 {
		return p.Price
	}
	factor := decimal.NewFromFloat(1 - *p.DiscountPercent/100)
	return p.Price.Mul(factor)
}
