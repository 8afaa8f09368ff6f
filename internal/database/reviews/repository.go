// Package reviews provides database operations for book reviews.
package reviews

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Repository handles all review database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reviews repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddReview appends a review to a book.
func (r *Repository) AddReview(bookID, userID uint, username string, rating int, text string) (*entities.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	var book entities.Book
	if err := r.db.First(&book, bookID).Error; err != nil {
		return nil, err
	}

	review := &entities.Review{
		BookID:    bookID,
		UserID:    userID,
		Username:  username,
		Rating:    rating,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// GetReviews retrieves a book's reviews, newest first.
func (r *Repository) GetReviews(bookID uint) ([]entities.Review, error) {
	var bookReviews []entities.Review
	err := r.db.Where("book_id = ?", bookID).
		Order("created_at DESC").
		Find(&bookReviews).Error
	return bookReviews, err
}

// GetAverageRating computes the display average for a book, rounded to
// one decimal. The average is derived on every read rather than stored.
func (r *Repository) GetAverageRating(bookID uint) (float64, error) {
	bookReviews, err := r.GetReviews(bookID)
	if err != nil {
		return 0, err
	}
	return entities.AverageRating(bookReviews), nil
}
