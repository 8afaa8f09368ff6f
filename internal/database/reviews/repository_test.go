package reviews

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
	dbPath := "./test_reviews_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{}, &entities.Review{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func createBook(t *testing.T, db *gorm.DB) *entities.Book {
	book := &entities.Book{
		Title:   "The Long Rain",
		Genre:   "drama",
		Verdict: entities.VerdictAccepted,
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func TestAddReview(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db)

	review, err := repo.AddReview(book.ID, 7, "amara", 4, "Kept me up all night.")
	require.NoError(t, err)
	assert.NotZero(t, review.ID)
	assert.Equal(t, book.ID, review.BookID)
	assert.Equal(t, "amara", review.Username)
	assert.Equal(t, 4, review.Rating)
	assert.False(t, review.CreatedAt.IsZero())
}

func TestAddReview_RejectsOutOfRangeRating(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db)

	for _, rating := range []int{0, -1, 6} {
		_, err := repo.AddReview(book.ID, 7, "amara", rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	reviews, err := repo.GetReviews(book.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestAddReview_UnknownBook(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.AddReview(999, 7, "amara", 3, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetReviews_NewestFirst(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db)

	first, err := repo.AddReview(book.ID, 1, "amara", 5, "first")
	require.NoError(t, err)
	second, err := repo.AddReview(book.ID, 2, "kofi", 2, "second")
	require.NoError(t, err)
	// Create calls can land on the same tick, push the first one back.
	require.NoError(t, db.Model(first).Update("created_at", second.CreatedAt.Add(-time.Second)).Error)

	reviews, err := repo.GetReviews(book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "kofi", reviews[0].Username)
	assert.Equal(t, "amara", reviews[1].Username)
}

func TestGetAverageRating(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	book := createBook(t, db)

	avg, err := repo.GetAverageRating(book.ID)
	require.NoError(t, err)
	assert.Zero(t, avg)

	_, err = repo.AddReview(book.ID, 1, "amara", 4, "")
	require.NoError(t, err)
	_, err = repo.AddReview(book.ID, 2, "kofi", 5, "")
	require.NoError(t, err)

	avg, err = repo.GetAverageRating(book.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, avg, 0.001)
}
