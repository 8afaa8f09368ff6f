// Package collections provides database operations for curated book lists.
package collections

import (
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
)

// Repository handles all collection database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new collections repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAllCollections retrieves every curated collection without resolving
// member books.
func (r *Repository) GetAllCollections() ([]entities.Collection, error) {
	var all []entities.Collection
	err := r.db.Order("name ASC").Find(&all).Error
	return all, err
}

// GetCollectionByID retrieves a collection with its accepted member books.
func (r *Repository) GetCollectionByID(id uint) (*entities.Collection, error) {
	var collection entities.Collection
	err := r.db.Preload("Books", "verdict = ?", entities.VerdictAccepted).
		Preload("Books.Author").
		First(&collection, id).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// CreateCollection creates a curated collection with the given members.
func (r *Repository) CreateCollection(name, coverURL string, books []entities.Book) (*entities.Collection, error) {
	collection := &entities.Collection{
		Name:     name,
		CoverURL: coverURL,
		Books:    books,
	}
	if err := r.db.Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}
