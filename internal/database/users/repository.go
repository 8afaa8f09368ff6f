// Package users provides database operations for profiles, entitlements
// and favorites.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	owned, err := repo.HasEntitlement(userID, bookID)
package users

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papersbook/storefront/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (r *Repository) UpdateProfile(userID uint, avatarURL, address string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"avatar_url": avatarURL,
		"address":    address,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GrantEntitlement adds a book to the user's library. The grant has set
// semantics: granting an already-owned book is a no-op, so it is safe to
// call under settlement retries.
func (r *Repository) GrantEntitlement(userID, bookID uint, saleID *uint) error {
	ent := entities.Entitlement{UserID: userID, BookID: bookID, SaleID: saleID}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(&ent).Error
}

// HasEntitlement reports whether the user already owns the book.
func (r *Repository) HasEntitlement(userID, bookID uint) (bool, error) {
	var ent entities.Entitlement
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&ent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetLibrary retrieves the user's entitled books, newest grants first.
func (r *Repository) GetLibrary(userID uint) ([]entities.Entitlement, error) {
	var entitlements []entities.Entitlement
	err := r.db.Preload("Book").Preload("Book.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&entitlements).Error
	return entitlements, err
}

// AddFavorite marks a book as a favorite of the user.
func (r *Repository) AddFavorite(userID, bookID uint) error {
	fav := entities.Favorite{UserID: userID, BookID: bookID}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
		DoNothing: true,
	}).Create(&fav).Error
}

// RemoveFavorite removes a book from the user's favorites.
func (r *Repository) RemoveFavorite(userID, bookID uint) error {
	return r.db.Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.Favorite{}).Error
}

// IsFavorite reports whether the book is among the user's favorites.
func (r *Repository) IsFavorite(userID, bookID uint) (bool, error) {
	var fav entities.Favorite
	err := r.db.Where("user_id = ? AND book_id = ?", userID, bookID).First(&fav).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetFavorites retrieves the user's favorite books.
func (r *Repository) GetFavorites(userID uint) ([]entities.Favorite, error) {
	var favorites []entities.Favorite
	err := r.db.Preload("Book").Preload("Book.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error
	return favorites, err
}
