package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
)

// CatalogStore defines database operations for browsing the book catalog.
type CatalogStore interface {
	GetBookByID(id uint) (*entities.Book, error)
	IncrementViewCount(id uint) error
	GetAcceptedBooks() ([]entities.Book, error)
	GetBooksByGenre(genre string) ([]entities.Book, error)
	GetFreeBooks() ([]entities.Book, error)
	GetRecentBooks(limit int) ([]entities.Book, error)
	GetMostViewedBooks(limit int) ([]entities.Book, error)
	GetTopRatedBooks(limit int) ([]entities.Book, error)
	GetCarouselBooks() ([]entities.Book, error)
	SearchBooks(query string, limit int) ([]entities.Book, error)
	GetGenres() ([]string, error)
}

type CatalogController struct {
	store CatalogStore
}

func NewCatalogController(store CatalogStore) *CatalogController {
	return &CatalogController{store: store}
}

// ListBooks returns all accepted books.
// GET /api/books
func (cc *CatalogController) ListBooks(c *gin.Context) {
	books, err := cc.store.GetAcceptedBooks()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// GetBook returns a single book with its author, episodes and reviews.
// Each fetch counts as a view.
// GET /api/books/:id
func (cc *CatalogController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.store.GetBookByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}

	// View counting is best-effort, the book itself is still served.
	if err := cc.store.IncrementViewCount(id); err != nil {
		log.Printf("Failed to increment view count for book %d: %v", id, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"book":           book,
		"average_rating": entities.AverageRating(book.Reviews),
	})
}

// BooksByGenre returns accepted books in a genre.
// GET /api/books/genre/:genre
func (cc *CatalogController) BooksByGenre(c *gin.Context) {
	genre := c.Param("genre")
	if genre == "" {
		respondBadRequest(c, "genre is required")
		return
	}

	books, err := cc.store.GetBooksByGenre(genre)
	if err != nil {
		respondInternalError(c, err, "books by genre")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genre": genre, "books": books, "count": len(books)})
}

// FreeBooks returns all accepted books with a zero price.
// GET /api/books/free
func (cc *CatalogController) FreeBooks(c *gin.Context) {
	books, err := cc.store.GetFreeBooks()
	if err != nil {
		respondInternalError(c, err, "free books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// RecentBooks returns the most recently added books.
// GET /api/books/recent
func (cc *CatalogController) RecentBooks(c *gin.Context) {
	limit := parseLimit(c, 20, 50)
	books, err := cc.store.GetRecentBooks(limit)
	if err != nil {
		respondInternalError(c, err, "recent books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// TopViewedBooks returns books ordered by view count.
// GET /api/books/top-viewed
func (cc *CatalogController) TopViewedBooks(c *gin.Context) {
	limit := parseLimit(c, 3, 50)
	books, err := cc.store.GetMostViewedBooks(limit)
	if err != nil {
		respondInternalError(c, err, "top viewed books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// TopRatedBooks returns books ordered by average review rating.
// GET /api/books/top-rated
func (cc *CatalogController) TopRatedBooks(c *gin.Context) {
	limit := parseLimit(c, 10, 50)
	books, err := cc.store.GetTopRatedBooks(limit)
	if err != nil {
		respondInternalError(c, err, "top rated books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// CarouselBooks returns the books promoted on the landing carousel.
// GET /api/books/carousel
func (cc *CatalogController) CarouselBooks(c *gin.Context) {
	books, err := cc.store.GetCarouselBooks()
	if err != nil {
		respondInternalError(c, err, "carousel books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

// SearchBooks searches accepted books by title.
// GET /api/books/search?q=
func (cc *CatalogController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	limit := parseLimit(c, 20, 100)
	books, err := cc.store.SearchBooks(query, limit)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "books": books, "count": len(books)})
}

// ListGenres returns the distinct genres of accepted books.
// GET /api/genres
func (cc *CatalogController) ListGenres(c *gin.Context) {
	genres, err := cc.store.GetGenres()
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres, "count": len(genres)})
}
