package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists one order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateTx persists one order row inside the given transaction, or on the
// base connection when tx is nil.
func (r *Repository) CreateTx(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Order, error) {
	repo := r
	if tx != nil {
		repo = r.WithTx(tx)
	}
	return repo.Create(ctx, order)
}

// FindByID loads an order with its product. Returns nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Product").
		First(&order, "id = ?", id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns a cursor page of the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) ([]models.Order, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID)
	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Order
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

// UpdateStatus transitions an order only from the expected current status.
// Returns false when the row is absent or already moved on.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
