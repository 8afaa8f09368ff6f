package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/covers"
)

// CoversController serves locally cached book cover images so the catalog
// does not hotlink author-provided image hosts.
type CoversController struct {
	cache *covers.Cache
	books CatalogStore
}

func NewCoversController(cache *covers.Cache, books CatalogStore) *CoversController {
	return &CoversController{
		cache: cache,
		books: books,
	}
}

// GetCover returns the cover image for a book, fetching and caching it on
// first access.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.books.GetBookByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load book for cover")
		return
	}

	if book.CoverURL == "" {
		respondNotFound(c, "cover")
		return
	}

	path, err := cc.cache.GetCover(book.ID, book.CoverURL)
	if err != nil {
		// Fall back to the origin URL rather than breaking the page.
		log.Printf("Cover cache miss for book %d: %v", book.ID, err)
		c.Redirect(http.StatusFound, book.CoverURL)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}
