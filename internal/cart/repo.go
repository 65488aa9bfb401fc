package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

// Repository encapsulates cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListItems returns the user's cart with product rows attached, oldest first
// so checkout iterates in the order items were added.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertItem inserts the line or accumulates quantity onto an existing one.
func (r *Repository) UpsertItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Exec(`INSERT INTO cart_items (user_id, product_id, quantity)
		      VALUES (?, ?, ?)
		      ON CONFLICT (user_id, product_id)
		      DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()`,
			userID, productID, quantity).
		Error
}

// SetItemQuantity overwrites the line quantity. Returns false when the user
// has no such line.
func (r *Repository) SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveItem deletes the line if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Clear drops every line in the user's cart.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).
		Error
}
