package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller exposes registration, login and logout over JSON.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
}

// NewController creates the auth controller.
func NewController(service *Service, sessionManager *SessionManager, rateLimiter *RateLimiter) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
	}
}

// RegisterRoutes attaches the auth endpoints to the router.
func (ac *Controller) RegisterRoutes(router gin.IRouter) {
	router.POST("/api/auth/register", ac.Register)
	router.POST("/api/auth/login", ac.Login)
	router.POST("/api/auth/logout", ac.Logout)
	router.GET("/api/auth/me", ac.Me)
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and signs the new user in.
// POST /api/auth/register
func (ac *Controller) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}

	user, err := ac.service.Register(req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, ErrUsernameInvalid),
			errors.Is(err, ErrEmailInvalid),
			errors.Is(err, ErrPasswordTooShort),
			errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Registration failed for %q: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Session creation failed for %q: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session creation failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"` // username or email
	Password   string `json:"password" binding:"required"`
}

// Login authenticates and starts a session.
// POST /api/auth/login
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier and password are required"})
		return
	}

	ip := c.ClientIP()
	if ac.rateLimiter != nil {
		if allowed, retryAfter := ac.rateLimiter.Allow(ip, req.Identifier); !allowed {
			c.Header("Retry-After", retryAfter.String())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many login attempts",
				"retry_after": retryAfter.String(),
			})
			return
		}
	}

	user, err := ac.service.Authenticate(req.Identifier, req.Password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(ip, req.Identifier)
		}
		if errors.Is(err, ErrAccountLocked) {
			c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
			return
		}
		// Same response for unknown user and wrong password
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(ip, req.Identifier)
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		log.Printf("Session creation failed for %q: %v", user.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session creation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout destroys the session.
// POST /api/auth/logout
func (ac *Controller) Logout(c *gin.Context) {
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		log.Printf("Session destruction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
// GET /api/auth/me
func (ac *Controller) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
