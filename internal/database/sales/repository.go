// Package sales provides database operations for sale records.
//
// A sale is created when checkout starts ("pending") and moves to exactly
// one of two terminal states: "settled" by the settlement service, or
// "cancelled" by the failure callback / an explicit cancellation.
package sales

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
)

// ErrSaleNotPending is returned when cancelling a sale that already
// reached a terminal state.
var ErrSaleNotPending = errors.New("sale is not pending")

// Repository handles all sale database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sales repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSale records a new pending sale with a fresh idempotency key.
func (r *Repository) CreateSale(userID, authorID, bookID uint, priceCents int64, method string) (*entities.Sale, error) {
	sale := &entities.Sale{
		IdempotencyKey: uuid.NewString(),
		UserID:         userID,
		AuthorID:       authorID,
		BookID:         bookID,
		PriceCents:     priceCents,
		Method:         method,
		Status:         entities.SaleStatusPending,
	}
	if err := r.db.Create(sale).Error; err != nil {
		return nil, err
	}
	return sale, nil
}

// GetSaleByID retrieves a sale by ID.
func (r *Repository) GetSaleByID(id uint) (*entities.Sale, error) {
	var sale entities.Sale
	err := r.db.First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetPendingSaleForPurchase finds the most recent pending sale for a
// (user, book) pair. Used to resolve legacy callbacks that carry book and
// user identifiers instead of a sale reference.
func (r *Repository) GetPendingSaleForPurchase(userID, bookID uint) (*entities.Sale, error) {
	var sale entities.Sale
	err := r.db.Where("user_id = ? AND book_id = ? AND status = ?",
		userID, bookID, entities.SaleStatusPending).
		Order("created_at DESC").
		First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetPendingSales retrieves pending sales created before the cutoff.
func (r *Repository) GetPendingSales(before time.Time) ([]entities.Sale, error) {
	var pending []entities.Sale
	err := r.db.Where("status = ? AND created_at < ?", entities.SaleStatusPending, before).
		Order("created_at ASC").
		Find(&pending).Error
	return pending, err
}

// GetSalesForUser retrieves the user's purchase history, newest first.
func (r *Repository) GetSalesForUser(userID uint) ([]entities.Sale, error) {
	var userSales []entities.Sale
	err := r.db.Preload("Book").Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&userSales).Error
	return userSales, err
}

// GetSalesForAuthor retrieves settled sales for an author, newest first.
func (r *Repository) GetSalesForAuthor(authorID uint) ([]entities.Sale, error) {
	var authorSales []entities.Sale
	err := r.db.Preload("Book").
		Where("author_id = ? AND status = ?", authorID, entities.SaleStatusSettled).
		Order("created_at DESC").
		Find(&authorSales).Error
	return authorSales, err
}

// CancelSale moves a pending sale to cancelled. Cancelling a sale that is
// no longer pending is rejected so a settled sale cannot be undone.
func (r *Repository) CancelSale(id uint) error {
	result := r.db.Model(&entities.Sale{}).
		Where("id = ? AND status = ?", id, entities.SaleStatusPending).
		Update("status", entities.SaleStatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSaleNotPending
	}
	return nil
}
