package products

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

// ListFilters narrows the catalog listing.
type ListFilters struct {
	CategoryID *uuid.UUID
	ActiveOnly bool
	Search     string
}

// Repository encapsulates product persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product with its category. Returns nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&product, "id = ?", id).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the given products in one query.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns a cursor page of products, newest first.
func (r *Repository) List(ctx context.Context, cursor string, limit int, filters ListFilters) ([]models.Product, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.Product{}).Preload("Category")
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active")
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Product
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

// Create persists a new product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, product.ID)
}

// Update applies a partial column patch and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

// Delete removes the product row if it exists.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// AdjustStockTx runs AdjustStock inside the given transaction, or on the
// base connection when tx is nil.
func (r *Repository) AdjustStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int, op enums.StockOperation) (*StockResult, error) {
	repo := r
	if tx != nil {
		repo = r.WithTx(tx)
	}
	return repo.AdjustStock(ctx, id, quantity, op)
}

type stockRow struct {
	StockQuantity     int `gorm:"column:stock_quantity"`
	LowStockThreshold int `gorm:"column:low_stock_threshold"`
}

// AdjustStock applies one bounded operation as a single conditional update
// so concurrent checkouts cannot lose increments. Clamping at zero happens
// in SQL. Returns ok=false when the product is missing or not tracked.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, quantity int, op enums.StockOperation) (*StockResult, error) {
	var expr string
	switch op {
	case enums.StockOperationAdd:
		expr = "stock_quantity + ?"
	case enums.StockOperationSubtract:
		expr = "GREATEST(0, stock_quantity - ?)"
	case enums.StockOperationSet:
		expr = "GREATEST(0, ?)"
	default:
		return nil, stockFailure(StockReasonInvalidOperation, "unknown stock operation")
	}

	var rows []stockRow
	err := r.db.WithContext(ctx).
		Raw(`UPDATE products
		     SET stock_quantity = `+expr+`, updated_at = now()
		     WHERE id = ? AND track_stock
		     RETURNING stock_quantity, low_stock_threshold`, quantity, id).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &StockResult{
		NewQuantity: rows[0].StockQuantity,
		IsLowStock:  rows[0].StockQuantity <= rows[0].LowStockThreshold,
	}, nil
}
