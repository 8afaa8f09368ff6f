package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleReader UserRole = "reader"
)

type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	Username     string   `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Role         UserRole `gorm:"size:20;default:'reader'" json:"role"`
	AvatarURL    string   `gorm:"size:2048" json:"avatar_url,omitempty"`
	Address      string   `gorm:"size:512" json:"address,omitempty"`

	// Login throttling
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	Entitlements []Entitlement `gorm:"foreignKey:UserID" json:"-"`
	Favorites    []Favorite    `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Entitlement records a user's right to read a purchased (or free) book.
// The (user, book) pair is unique so repeated settlement of the same sale
// cannot grant the book twice.
type Entitlement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_book;index" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_user_book;index" json:"book_id"`
	SaleID    *uint     `gorm:"index" json:"sale_id,omitempty"` // nil for free grants
	Book      Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_fav;index" json:"user_id"`
	BookID    uint      `gorm:"uniqueIndex:idx_user_fav;index" json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
