package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papersbook/storefront/internal/auth"
	"github.com/papersbook/storefront/internal/entities"
)

// LibraryStore defines database operations for a user's library, favorites
// and profile.
type LibraryStore interface {
	GetLibrary(userID uint) ([]entities.Entitlement, error)
	HasEntitlement(userID, bookID uint) (bool, error)
	AddFavorite(userID, bookID uint) error
	RemoveFavorite(userID, bookID uint) error
	GetFavorites(userID uint) ([]entities.Favorite, error)
	UpdateProfile(userID uint, avatarURL, address string) error
}

// SaleHistoryStore provides the purchase history shown on the profile page.
type SaleHistoryStore interface {
	GetSalesForUser(userID uint) ([]entities.Sale, error)
}

type LibraryController struct {
	store       LibraryStore
	sales       SaleHistoryStore
	authService *auth.Service
}

func NewLibraryController(store LibraryStore, sales SaleHistoryStore, authService *auth.Service) *LibraryController {
	return &LibraryController{
		store:       store,
		sales:       sales,
		authService: authService,
	}
}

// Library returns the books the current user owns.
// GET /api/library
func (lc *LibraryController) Library(c *gin.Context) {
	entitlements, err := lc.store.GetLibrary(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get library")
		return
	}
	c.JSON(http.StatusOK, gin.H{"library": entitlements, "count": len(entitlements)})
}

type profileResponse struct {
	ID        uint              `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Role      entities.UserRole `json:"role"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	Address   string            `json:"address,omitempty"`
	Purchases []entities.Sale   `json:"purchases"`
}

// Profile returns the current user's profile and purchase history.
// GET /api/profile
func (lc *LibraryController) Profile(c *gin.Context) {
	userID := GetUserID(c)

	user, err := lc.authService.GetUserByID(userID)
	if errors.Is(err, auth.ErrUserNotFound) {
		respondNotFound(c, "user")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get profile")
		return
	}

	sales, err := lc.sales.GetSalesForUser(userID)
	if err != nil {
		respondInternalError(c, err, "get purchase history")
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
		Address:   user.Address,
		Purchases: sales,
	})
}

type updateProfileRequest struct {
	AvatarURL string `json:"avatar_url"`
	Address   string `json:"address"`
}

// UpdateProfile updates the mutable fields of the current user's profile.
// PUT /api/profile
func (lc *LibraryController) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if err := lc.store.UpdateProfile(GetUserID(c), req.AvatarURL, req.Address); err != nil {
		respondInternalError(c, err, "update profile")
		return
	}
	respondSuccess(c, "profile updated")
}
