package models

import (
	"time"

	"github.com/google/uuid"
)

// UserCourse grants a user access to a course, recorded after checkout.
type UserCourse struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:user_courses_user_id_idx;uniqueIndex:user_courses_user_course_key"`
	CourseID  uuid.UUID  `gorm:"column:course_id;type:uuid;not null;uniqueIndex:user_courses_user_course_key"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
