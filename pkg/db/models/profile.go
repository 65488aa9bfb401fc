package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the hosted identity provider's user record.
type Profile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:profiles_email_key"`
	FullName  *string   `gorm:"column:full_name"`
	Role      string    `gorm:"column:role;not null;default:'customer'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
