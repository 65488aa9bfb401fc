package coupons

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
)

// Repository encapsulates coupon persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a coupon repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByCode matches the code case-insensitively. Returns nil when absent.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&coupon).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// FindByID loads a coupon by primary key. Returns nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// Create persists a new coupon. Codes are stored upper-cased.
func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return nil, err
	}
	return coupon, nil
}

// Update applies a partial column patch and returns the refreshed row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Coupon, error) {
	if code, ok := updates["code"].(string); ok {
		updates["code"] = strings.ToUpper(strings.TrimSpace(code))
	}
	result := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
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

// Delete removes the coupon row if it exists.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List returns a cursor page of coupons, newest first.
func (r *Repository) List(ctx context.Context, cursor string, limit int) ([]models.Coupon, string, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).Model(&models.Coupon{})
	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []models.Coupon
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

// IncrementUsage bumps used_count, honoring the usage limit when one is set.
// Returns false when the limit was already exhausted.
func (r *Repository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Exec(`UPDATE coupons
		      SET used_count = used_count + 1, updated_at = now()
		      WHERE id = ? AND (usage_limit IS NULL OR used_count < usage_limit)`, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
