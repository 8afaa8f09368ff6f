// Package authors provides database operations for author profiles,
// balances and the credit ledger.
package authors

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/entities"
)

// ErrDuplicateCredit is returned when a ledger entry already exists for
// the given idempotency key.
var ErrDuplicateCredit = errors.New("credit already recorded for idempotency key")

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAuthorByID retrieves an author by ID.
func (r *Repository) GetAuthorByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// GetTransactions retrieves the author's ledger, newest first.
func (r *Repository) GetTransactions(authorID uint) ([]entities.AuthorTransaction, error) {
	var transactions []entities.AuthorTransaction
	err := r.db.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&transactions).Error
	return transactions, err
}

// HasTransaction reports whether a ledger entry exists for the key.
func (r *Repository) HasTransaction(idempotencyKey string) (bool, error) {
	var tx entities.AuthorTransaction
	err := r.db.Where("idempotency_key = ?", idempotencyKey).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Credit increments the author's balance and appends a matching ledger
// entry in a single transaction, keeping the balance equal to the sum of
// ledger amounts. The unique index on the idempotency key rejects replays
// at the store level.
//
// Callers already inside a transaction should use CreditTx instead.
func (r *Repository) Credit(authorID uint, sale *entities.Sale, amountCents int64) (*entities.AuthorTransaction, error) {
	var entry *entities.AuthorTransaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		entry, txErr = credit(tx, authorID, sale, amountCents)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// CreditTx credits the author inside the caller's transaction.
func (r *Repository) CreditTx(tx *gorm.DB, authorID uint, sale *entities.Sale, amountCents int64) (*entities.AuthorTransaction, error) {
	return credit(tx, authorID, sale, amountCents)
}

func credit(tx *gorm.DB, authorID uint, sale *entities.Sale, amountCents int64) (*entities.AuthorTransaction, error) {
	var existing entities.AuthorTransaction
	err := tx.Where("idempotency_key = ?", sale.IdempotencyKey).First(&existing).Error
	if err == nil {
		return nil, ErrDuplicateCredit
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var author entities.Author
	if err := tx.First(&author, authorID).Error; err != nil {
		return nil, err
	}

	newBalance := author.BalanceCents + amountCents
	if err := tx.Model(&entities.Author{}).Where("id = ?", authorID).
		UpdateColumn("balance_cents", newBalance).Error; err != nil {
		return nil, err
	}

	entry := &entities.AuthorTransaction{
		AuthorID:              authorID,
		SaleID:                sale.ID,
		BookID:                sale.BookID,
		AmountCents:           amountCents,
		ResultingBalanceCents: newBalance,
		IdempotencyKey:        sale.IdempotencyKey,
		CreatedAt:             time.Now(),
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
