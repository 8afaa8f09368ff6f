package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
)

// CollectionsStore defines database operations for curated book collections.
type CollectionsStore interface {
	GetAllCollections() ([]entities.Collection, error)
	GetCollectionByID(id uint) (*entities.Collection, error)
}

type CollectionsController struct {
	store CollectionsStore
}

func NewCollectionsController(store CollectionsStore) *CollectionsController {
	return &CollectionsController{store: store}
}

// ListCollections returns all curated collections.
// GET /api/collections
func (cc *CollectionsController) ListCollections(c *gin.Context) {
	collections, err := cc.store.GetAllCollections()
	if err != nil {
		respondInternalError(c, err, "list collections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections, "count": len(collections)})
}

// GetCollection returns a single collection with its accepted books.
// GET /api/collections/:id
func (cc *CollectionsController) GetCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	collection, err := cc.store.GetCollectionByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "collection")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get collection")
		return
	}
	c.JSON(http.StatusOK, collection)
}
