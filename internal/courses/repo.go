package courses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

// Repository encapsulates course association and grant persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a course repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindCourseIDsByProduct returns the courses a product unlocks.
func (r *Repository) FindCourseIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ProductCourse{}).
		Where("product_id = ?", productID).
		Pluck("course_id", &ids).
		Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Grant records course access for the user. Re-granting is a no-op so a
// second purchase of the same bundle never fails checkout.
func (r *Repository) Grant(ctx context.Context, userID, courseID uuid.UUID, orderID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO user_courses (user_id, course_id, order_id) VALUES (?, ?, ?)
		      ON CONFLICT (user_id, course_id) DO NOTHING`, userID, courseID, orderID).
		Error
}

// ListUserCourses returns every grant for the user, newest first.
func (r *Repository) ListUserCourses(ctx context.Context, userID uuid.UUID) ([]models.UserCourse, error) {
	var rows []models.UserCourse
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AttachCourse links a product to a course it unlocks.
func (r *Repository) AttachCourse(ctx context.Context, productID, courseID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO product_courses (product_id, course_id) VALUES (?, ?)
		      ON CONFLICT (product_id, course_id) DO NOTHING`, productID, courseID).
		Error
}

// DetachCourse removes a product-course association.
func (r *Repository) DetachCourse(ctx context.Context, productID, courseID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("product_id = ? AND course_id = ?", productID, courseID).
		Delete(&models.ProductCourse{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
