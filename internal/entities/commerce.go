package entities

import (
	"time"

	"gorm.io/gorm"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusSettled   SaleStatus = "settled"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// SaleMethodMobileMoney is the only payment method the storefront offers.
const SaleMethodMobileMoney = "mobile-money"

// Sale is created when a checkout starts and settled when the payment
// provider redirects back. Pending is the only non-terminal status.
type Sale struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	IdempotencyKey string     `gorm:"uniqueIndex;size:64" json:"idempotency_key"`
	UserID         uint       `gorm:"index" json:"user_id"`
	AuthorID       uint       `gorm:"index" json:"author_id"`
	BookID         uint       `gorm:"index" json:"book_id"`
	PriceCents     int64      `json:"price_cents"`
	Method         string     `gorm:"size:50;default:'mobile-money'" json:"method"`
	Status         SaleStatus `gorm:"index;size:20;default:'pending'" json:"status"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`

	User   User   `gorm:"foreignKey:UserID" json:"-"`
	Author Author `gorm:"foreignKey:AuthorID" json:"-"`
	Book   Book   `gorm:"foreignKey:BookID" json:"book,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Author struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"index;size:256" json:"name"`
	Occupation   string `gorm:"size:256" json:"occupation,omitempty"`
	Bio          string `gorm:"type:text" json:"bio,omitempty"`
	PhotoURL     string `gorm:"size:2048" json:"photo_url,omitempty"`
	BalanceCents int64  `gorm:"default:0" json:"balance_cents"`

	Transactions []AuthorTransaction `gorm:"foreignKey:AuthorID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// AuthorTransaction is an append-only ledger entry for a credit to an
// author's balance. The idempotency key is unique so a replayed settlement
// cannot record a second credit for the same sale.
type AuthorTransaction struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	AuthorID              uint      `gorm:"index" json:"author_id"`
	SaleID                uint      `gorm:"index" json:"sale_id"`
	BookID                uint      `gorm:"index" json:"book_id"`
	AmountCents           int64     `json:"amount_cents"`
	ResultingBalanceCents int64     `json:"resulting_balance_cents"`
	IdempotencyKey        string    `gorm:"uniqueIndex;size:64" json:"idempotency_key"`
	CreatedAt             time.Time `json:"created_at"`
}

// PlatformEarning records the platform's share of a settled sale.
type PlatformEarning struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SaleID      uint      `gorm:"uniqueIndex" json:"sale_id"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}
