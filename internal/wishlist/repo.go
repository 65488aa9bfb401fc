package wishlist

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (user_id, product_id) VALUES (?, ?)
		      ON CONFLICT (user_id, product_id) DO NOTHING`, userID, productID).
		Error
}

// RemoveItem deletes the user-product like if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListItems returns a cursor page of wishlist entries with products
// attached, newest first.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.WishlistItem, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID)
	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.WishlistItem
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(limit)).
		Find(&rows).
		Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}
