package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category_id TEXT,
  price NUMERIC NOT NULL,
  discount_percent NUMERIC,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  low_stock_threshold INTEGER NOT NULL DEFAULT 5,
  track_stock INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  item_subtotal NUMERIC NOT NULL,
  allocated_tax NUMERIC NOT NULL DEFAULT 0,
  allocated_shipping NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  total_amount NUMERIC NOT NULL,
  coupon_id TEXT,
  status TEXT NOT NULL DEFAULT 'processing',
  payment_reference TEXT NOT NULL,
  shipping_address TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(orders).Error)
	return db
}

func seedOrderProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()

	product := models.Product{
		ID:            uuid.New(),
		Name:          "Deep Focus Workbook",
		Price:         decimal.RequireFromString("25.00"),
		IsActive:      true,
		StockQuantity: 10,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func newOrderRow(userID uuid.UUID, product models.Product, createdAt time.Time) models.Order {
	return models.Order{
		ID:               uuid.New(),
		UserID:           userID,
		ProductID:        product.ID,
		Quantity:         2,
		UnitPrice:        product.Price,
		ItemSubtotal:     product.Price.Mul(decimal.NewFromInt(2)),
		TotalAmount:      product.Price.Mul(decimal.NewFromInt(2)),
		Status:           enums.OrderStatusProcessing,
		PaymentReference: "PAY-" + uuid.NewString(),
		CreatedAt:        createdAt,
	}
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	product := seedOrderProduct(t, db)

	order := newOrderRow(uuid.New(), product, time.Now().UTC())
	created, err := repo.Create(context.Background(), &order)
	require.NoError(t, err)
	require.NotNil(t, created)

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.True(t, found.TotalAmount.Equal(decimal.RequireFromString("50.00")))
	require.NotNil(t, found.Product)
	assert.Equal(t, product.ID, found.Product.ID)
}

func TestRepositoryFindByIDAbsent(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	found, err := repo.FindByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestRepositoryListByUserNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	product := seedOrderProduct(t, db)
	userID := uuid.New()

	base := time.Now().UTC().Truncate(time.Second)
	older := newOrderRow(userID, product, base.Add(-time.Hour))
	newer := newOrderRow(userID, product, base)
	other := newOrderRow(uuid.New(), product, base)
	for _, row := range []models.Order{older, newer, other} {
		row := row
		require.NoError(t, db.Create(&row).Error)
	}

	rows, nextCursor, err := repo.ListByUser(context.Background(), userID, "", 10)
	require.NoError(t, err)
	assert.Empty(t, nextCursor)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestRepositoryListByUserPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	product := seedOrderProduct(t, db)
	userID := uuid.New()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		row := newOrderRow(userID, product, base.Add(-time.Duration(i)*time.Minute))
		require.NoError(t, db.Create(&row).Error)
	}

	firstPage, cursor, err := repo.ListByUser(context.Background(), userID, "", 2)
	require.NoError(t, err)
	require.Len(t, firstPage, 2)
	require.NotEmpty(t, cursor)

	secondPage, lastCursor, err := repo.ListByUser(context.Background(), userID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.Empty(t, lastCursor)
	assert.NotEqual(t, firstPage[0].ID, secondPage[0].ID)
	assert.NotEqual(t, firstPage[1].ID, secondPage[0].ID)
}

func TestRepositoryUpdateStatusRequiresExpectedState(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	product := seedOrderProduct(t, db)

	order := newOrderRow(uuid.New(), product, time.Now().UTC())
	require.NoError(t, db.Create(&order).Error)

	moved, err := repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.True(t, moved)

	movedAgain, err := repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing, enums.OrderStatusCancelled)
	require.NoError(t, err)
	assert.False(t, movedAgain)
}
