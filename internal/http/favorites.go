package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AddFavorite marks a book as a favorite of the current user.
// POST /api/books/:id/favorite
func (lc *LibraryController) AddFavorite(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.store.AddFavorite(GetUserID(c), bookID); err != nil {
		respondInternalError(c, err, "add favorite")
		return
	}
	respondSuccess(c, "favorite added")
}

// RemoveFavorite removes a book from the current user's favorites.
// DELETE /api/books/:id/favorite
func (lc *LibraryController) RemoveFavorite(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.store.RemoveFavorite(GetUserID(c), bookID); err != nil {
		respondInternalError(c, err, "remove favorite")
		return
	}
	respondSuccess(c, "favorite removed")
}

// ListFavorites returns the current user's favorite books.
// GET /api/favorites
func (lc *LibraryController) ListFavorites(c *gin.Context) {
	favorites, err := lc.store.GetFavorites(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites, "count": len(favorites)})
}
