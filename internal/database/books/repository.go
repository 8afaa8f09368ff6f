// Package books provides read-side database operations for the catalog.
//
// Only accepted books are visible through the catalog queries; moderation
// happens outside this application and is reflected in the verdict column.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
package books

import (
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// accepted scopes a query to books that passed moderation.
func accepted(db *gorm.DB) *gorm.DB {
	return db.Where("verdict = ?", entities.VerdictAccepted)
}

// GetBookByID retrieves a book by its ID with all related data.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").
		Preload("Episodes", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByTitle retrieves an accepted book by exact title.
func (r *Repository) GetBookByTitle(title string) (*entities.Book, error) {
	var book entities.Book
	err := accepted(r.db).Preload("Author").Where("title = ?", title).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// IncrementViewCount bumps the view counter for a book. Lost updates under
// concurrent page loads are acceptable for a display counter, but the
// increment itself is done in SQL rather than read-modify-write.
func (r *Repository) IncrementViewCount(id uint) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// GetAcceptedBooks retrieves all books that passed moderation.
func (r *Repository) GetAcceptedBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").Order("date_added DESC").Find(&books).Error
	return books, err
}

// GetBooksByGenre retrieves accepted books for a single genre.
func (r *Repository) GetBooksByGenre(genre string) ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").Where("genre = ?", genre).
		Order("date_added DESC").Find(&books).Error
	return books, err
}

// GetFreeBooks retrieves accepted books with a zero price.
func (r *Repository) GetFreeBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").Where("price_cents = 0").
		Order("date_added DESC").Find(&books).Error
	return books, err
}

// GetRecentBooks retrieves the most recently added accepted books.
func (r *Repository) GetRecentBooks(limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").Order("date_added DESC").
		Limit(limit).Find(&books).Error
	return books, err
}

// GetMostViewedBooks retrieves accepted books ordered by view count.
func (r *Repository) GetMostViewedBooks(limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").Order("view_count DESC").
		Limit(limit).Find(&books).Error
	return books, err
}

// GetTopRatedBooks retrieves accepted books ordered by average review
// rating. Books without reviews sort last.
func (r *Repository) GetTopRatedBooks(limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").Preload("Reviews").
		Joins("LEFT JOIN reviews ON reviews.book_id = books.id").
		Group("books.id").
		Order("AVG(reviews.rating) DESC NULLS LAST").
		Limit(limit).
		Find(&books).Error
	return books, err
}

// GetCarouselBooks retrieves accepted books flagged for the home carousel.
func (r *Repository) GetCarouselBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").Where("in_carousel = ?", true).
		Order("date_added DESC").Find(&books).Error
	return books, err
}

// SearchBooks retrieves accepted books whose title matches the query.
func (r *Repository) SearchBooks(query string, limit int) ([]entities.Book, error) {
	var books []entities.Book
	err := accepted(r.db).Preload("Author").
		Where("title LIKE ?", "%"+query+"%").
		Order("date_added DESC").Limit(limit).Find(&books).Error
	return books, err
}

// GetGenres retrieves the distinct genres of accepted books.
func (r *Repository) GetGenres() ([]string, error) {
	var genres []string
	err := accepted(r.db.Model(&entities.Book{})).
		Distinct("genre").Where("genre != ''").Order("genre ASC").
		Pluck("genre", &genres).Error
	return genres, err
}
