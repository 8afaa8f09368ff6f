package collections

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/papersbook/storefront/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_collections_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Author{}, &entities.Book{}, &entities.Collection{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func TestGetAllCollections_SortedByName(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateCollection("Staff picks", "", nil)
	require.NoError(t, err)
	_, err = repo.CreateCollection("New voices", "", nil)
	require.NoError(t, err)

	all, err := repo.GetAllCollections()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "New voices", all[0].Name)
	assert.Equal(t, "Staff picks", all[1].Name)
}

func TestGetCollectionByID_OnlyAcceptedBooks(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	accepted := entities.Book{Title: "Shown", Verdict: entities.VerdictAccepted}
	pending := entities.Book{Title: "Hidden", Verdict: entities.VerdictPending}
	require.NoError(t, db.Create(&accepted).Error)
	require.NoError(t, db.Create(&pending).Error)

	created, err := repo.CreateCollection("Editor's picks", "https://cdn.example.com/c.png", []entities.Book{accepted, pending})
	require.NoError(t, err)

	collection, err := repo.GetCollectionByID(created.ID)
	require.NoError(t, err)
	require.Len(t, collection.Books, 1)
	assert.Equal(t, "Shown", collection.Books[0].Title)
}

func TestGetCollectionByID_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetCollectionByID(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
