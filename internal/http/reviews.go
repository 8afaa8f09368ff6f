package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/papersbook/storefront/internal/auth"
	"github.com/papersbook/storefront/internal/database/reviews"
	"github.com/papersbook/storefront/internal/entities"
)

// ReviewStore defines database operations for book reviews.
type ReviewStore interface {
	AddReview(bookID, userID uint, username string, rating int, text string) (*entities.Review, error)
	GetReviews(bookID uint) ([]entities.Review, error)
	GetAverageRating(bookID uint) (float64, error)
}

type ReviewsController struct {
	store ReviewStore
}

func NewReviewsController(store ReviewStore) *ReviewsController {
	return &ReviewsController{store: store}
}

type addReviewRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Text   string `json:"text"`
}

// AddReview records a review for a book by the current user.
// POST /api/books/:id/reviews
func (rc *ReviewsController) AddReview(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "rating is required")
		return
	}

	review, err := rc.store.AddReview(bookID, GetUserID(c), auth.GetUsername(c), req.Rating, req.Text)
	if errors.Is(err, reviews.ErrInvalidRating) {
		respondBadRequest(c, "rating must be between 1 and 5")
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "add review")
		return
	}

	respondCreated(c, review)
}

// ListReviews returns all reviews for a book plus the aggregated rating.
// GET /api/books/:id/reviews
func (rc *ReviewsController) ListReviews(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bookReviews, err := rc.store.GetReviews(bookID)
	if err != nil {
		respondInternalError(c, err, "list reviews")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        bookReviews,
		"count":          len(bookReviews),
		"average_rating": entities.AverageRating(bookReviews),
	})
}
