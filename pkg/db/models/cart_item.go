package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem links a user to a product with a desired quantity.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:cart_items_user_id_idx;uniqueIndex:cart_items_user_product_key"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_items_user_product_key"`
	Quantity  int       `gorm:"column:quantity;not null;default:1"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
