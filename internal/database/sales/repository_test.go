package sales

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/papersbook/storefront/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_sales_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Book{},
		&entities.Sale{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func TestCreateSale(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	sale, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)

	assert.NotZero(t, sale.ID)
	assert.NotEmpty(t, sale.IdempotencyKey)
	assert.Equal(t, entities.SaleStatusPending, sale.Status)
	assert.Equal(t, int64(150000), sale.PriceCents)

	// Every sale gets its own idempotency key
	second, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	assert.NotEqual(t, sale.IdempotencyKey, second.IdempotencyKey)
}

func TestGetPendingSaleForPurchase_PicksMostRecent(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	older, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	require.NoError(t, db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)

	newer, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)

	// A settled sale for the same pair must not be picked up
	settled, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	require.NoError(t, db.Model(settled).Update("status", entities.SaleStatusSettled).Error)

	found, err := repo.GetPendingSaleForPurchase(1, 3)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, found.ID)
}

func TestGetPendingSaleForPurchase_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetPendingSaleForPurchase(9, 9)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetPendingSales_FiltersByCutoff(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	stale, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	require.NoError(t, db.Model(stale).Update("created_at", time.Now().Add(-time.Hour)).Error)

	_, err = repo.CreateSale(4, 5, 6, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)

	pending, err := repo.GetPendingSales(time.Now().Add(-10 * time.Minute))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, stale.ID, pending[0].ID)
}

func TestCancelSale(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	sale, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)

	require.NoError(t, repo.CancelSale(sale.ID))

	var reloaded entities.Sale
	require.NoError(t, db.First(&reloaded, sale.ID).Error)
	assert.Equal(t, entities.SaleStatusCancelled, reloaded.Status)

	// Cancelling again, or cancelling a settled sale, is rejected
	assert.ErrorIs(t, repo.CancelSale(sale.ID), ErrSaleNotPending)
}

func TestCancelSale_SettledSaleStaysSettled(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	sale, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	require.NoError(t, db.Model(sale).Update("status", entities.SaleStatusSettled).Error)

	assert.ErrorIs(t, repo.CancelSale(sale.ID), ErrSaleNotPending)

	var reloaded entities.Sale
	require.NoError(t, db.First(&reloaded, sale.ID).Error)
	assert.Equal(t, entities.SaleStatusSettled, reloaded.Status)
}

func TestGetSalesForUser(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	_, err = repo.CreateSale(1, 2, 4, 200000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	_, err = repo.CreateSale(2, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)

	mine, err := repo.GetSalesForUser(1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestGetSalesForAuthor_OnlySettled(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	settled, err := repo.CreateSale(1, 2, 3, 150000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)
	require.NoError(t, db.Model(settled).Update("status", entities.SaleStatusSettled).Error)

	_, err = repo.CreateSale(2, 2, 4, 200000, entities.SaleMethodMobileMoney)
	require.NoError(t, err)

	earned, err := repo.GetSalesForAuthor(2)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, settled.ID, earned[0].ID)
}
