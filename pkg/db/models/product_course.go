package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductCourse associates a purchasable product with a course it unlocks.
type ProductCourse struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:product_courses_product_id_idx;uniqueIndex:product_courses_product_course_key"`
	CourseID  uuid.UUID `gorm:"column:course_id;type:uuid;not null;uniqueIndex:product_courses_product_course_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
