package authors

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/papersbook/storefront/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_authors_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Sale{},
		&entities.AuthorTransaction{},
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

func createAuthorAndSale(t *testing.T, db *gorm.DB) (*entities.Author, *entities.Sale) {
	author := &entities.Author{Name: "Jean-Paul Essomba"}
	require.NoError(t, db.Create(author).Error)

	sale := &entities.Sale{
		IdempotencyKey: uuid.NewString(),
		AuthorID:       author.ID,
		BookID:         1,
		UserID:         1,
		PriceCents:     100000,
		Status:         entities.SaleStatusPending,
	}
	require.NoError(t, db.Create(sale).Error)
	return author, sale
}

func TestCredit_UpdatesBalanceAndLedger(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	author, sale := createAuthorAndSale(t, db)

	entry, err := repo.Credit(author.ID, sale, 70000)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), entry.AmountCents)
	assert.Equal(t, int64(70000), entry.ResultingBalanceCents)
	assert.Equal(t, sale.IdempotencyKey, entry.IdempotencyKey)

	reloaded, err := repo.GetAuthorByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), reloaded.BalanceCents)
}

func TestCredit_DuplicateKeyRejected(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	author, sale := createAuthorAndSale(t, db)

	_, err := repo.Credit(author.ID, sale, 70000)
	require.NoError(t, err)

	_, err = repo.Credit(author.ID, sale, 70000)
	assert.ErrorIs(t, err, ErrDuplicateCredit)

	// Balance unchanged by the replay
	reloaded, err := repo.GetAuthorByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70000), reloaded.BalanceCents)
}

func TestCredit_AccumulatesAcrossSales(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	author, firstSale := createAuthorAndSale(t, db)

	secondSale := &entities.Sale{
		IdempotencyKey: uuid.NewString(),
		AuthorID:       author.ID,
		BookID:         2,
		UserID:         2,
		PriceCents:     50000,
		Status:         entities.SaleStatusPending,
	}
	require.NoError(t, db.Create(secondSale).Error)

	_, err := repo.Credit(author.ID, firstSale, 70000)
	require.NoError(t, err)
	entry, err := repo.Credit(author.ID, secondSale, 35000)
	require.NoError(t, err)

	assert.Equal(t, int64(105000), entry.ResultingBalanceCents)

	transactions, err := repo.GetTransactions(author.ID)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestHasTransaction(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	author, sale := createAuthorAndSale(t, db)

	has, err := repo.HasTransaction(sale.IdempotencyKey)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = repo.Credit(author.ID, sale, 70000)
	require.NoError(t, err)

	has, err = repo.HasTransaction(sale.IdempotencyKey)
	require.NoError(t, err)
	assert.True(t, has)
}
