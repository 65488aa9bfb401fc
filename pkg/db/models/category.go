package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products for browsing and coupon scoping.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:categories_name_key"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex:categories_slug_key"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
