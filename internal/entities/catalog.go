package entities

import (
	"math"
	"time"

	"gorm.io/gorm"
)

type Verdict string

const (
	VerdictPending  Verdict = "pending"
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
)

type Book struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"index;size:512" json:"title"`
	Genre        string         `gorm:"index;size:100" json:"genre"`
	Summary      string         `gorm:"type:text" json:"summary,omitempty"`
	ShortSummary string         `gorm:"size:512" json:"short_summary,omitempty"`
	PriceCents   int64          `gorm:"index" json:"price_cents"` // 0 means free
	CoverURL     string         `gorm:"size:2048" json:"cover_url,omitempty"`
	AuthorID     uint           `gorm:"index" json:"author_id"`
	Author       Author         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Verdict      Verdict        `gorm:"index;size:20;default:'pending'" json:"verdict"`
	InCarousel   bool           `gorm:"default:false" json:"in_carousel"`
	ViewCount    int64          `gorm:"default:0" json:"view_count"`
	DateAdded    time.Time      `gorm:"index" json:"date_added"`
	Episodes     []Episode      `gorm:"foreignKey:BookID" json:"episodes,omitempty"`
	Reviews      []Review       `gorm:"foreignKey:BookID" json:"reviews,omitempty"`

	// Edition details shown on the book page
	Year      int    `json:"year,omitempty"`
	Edition   string `gorm:"size:100" json:"edition,omitempty"`
	Format    string `gorm:"size:50" json:"format,omitempty"`
	PageCount int    `json:"page_count,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// IsFree reports whether the book can be granted without going through
// the payment provider.
func (b *Book) IsFree() bool {
	return b.PriceCents == 0
}

type Episode struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookID     uint      `gorm:"index" json:"book_id"`
	Number     int       `json:"number"`
	Title      string    `gorm:"size:512" json:"title"`
	ContentURL string    `gorm:"size:2048" json:"content_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"index" json:"book_id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Username  string    `gorm:"size:100" json:"username"`
	Rating    int       `json:"rating"` // 1-5
	Text      string    `gorm:"type:text" json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AverageRating computes a display average over a set of reviews, rounded
// to one decimal. Returns 0 when there are no reviews.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	var total int
	for _, r := range reviews {
		total += r.Rating
	}
	mean := float64(total) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

type Collection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:256" json:"name"`
	CoverURL  string    `gorm:"size:2048" json:"cover_url,omitempty"`
	Books     []Book    `gorm:"many2many:collection_books;" json:"books,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
