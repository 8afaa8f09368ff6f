package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papersbook/storefront/internal/auth"
	"github.com/papersbook/storefront/internal/database"
	"github.com/papersbook/storefront/internal/database/reviews"
	"github.com/papersbook/storefront/internal/entities"
)

func setupReviewsTest(t *testing.T) (*database.Database, *gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_reviews_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	controller := NewReviewsController(reviews.NewRepository(db.DB))

	router := gin.New()
	// Stand in for a resolved session.
	router.Use(func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, uint(7))
		c.Set(auth.ContextKeyUsername, "amara")
		c.Next()
	})
	router.POST("/api/books/:id/reviews", controller.AddReview)
	router.GET("/api/books/:id/reviews", controller.ListReviews)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, router, cleanup
}

func postReview(router *gin.Engine, path string, body map[string]any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestReviewsController_AddReview(t *testing.T) {
	t.Run("creates the review", func(t *testing.T) {
		db, router, cleanup := setupReviewsTest(t)
		defer cleanup()

		book := &entities.Book{Title: "Reviewed", Verdict: entities.VerdictAccepted}
		require.NoError(t, db.DB.Create(book).Error)

		w := postReview(router, "/api/books/1/reviews", map[string]any{
			"rating": 4,
			"text":   "Kept me up all night.",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var review entities.Review
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))
		assert.Equal(t, "amara", review.Username)
		assert.Equal(t, 4, review.Rating)
	})

	t.Run("rejects out-of-range rating", func(t *testing.T) {
		db, router, cleanup := setupReviewsTest(t)
		defer cleanup()

		book := &entities.Book{Title: "Reviewed", Verdict: entities.VerdictAccepted}
		require.NoError(t, db.DB.Create(book).Error)

		w := postReview(router, "/api/books/1/reviews", map[string]any{"rating": 6})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "rating must be between 1 and 5")
	})

	t.Run("rejects missing rating", func(t *testing.T) {
		_, router, cleanup := setupReviewsTest(t)
		defer cleanup()

		w := postReview(router, "/api/books/1/reviews", map[string]any{"text": "no rating"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for unknown book", func(t *testing.T) {
		_, router, cleanup := setupReviewsTest(t)
		defer cleanup()

		w := postReview(router, "/api/books/999/reviews", map[string]any{"rating": 3})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReviewsController_ListReviews(t *testing.T) {
	db, router, cleanup := setupReviewsTest(t)
	defer cleanup()

	book := &entities.Book{Title: "Reviewed", Verdict: entities.VerdictAccepted}
	require.NoError(t, db.DB.Create(book).Error)

	require.Equal(t, http.StatusCreated, postReview(router, "/api/books/1/reviews", map[string]any{"rating": 4}).Code)
	require.Equal(t, http.StatusCreated, postReview(router, "/api/books/1/reviews", map[string]any{"rating": 5}).Code)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/books/1/reviews", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])
	assert.Equal(t, 4.5, response["average_rating"])
}
