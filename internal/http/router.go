package http

import (
	"github.com/gin-gonic/gin"

	"github.com/papersbook/storefront/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Apply CSRF protection if auth is enabled
	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Apply session middleware if enabled
	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Apply auth middleware if enabled
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Next()
		})
	}

	// Register auth routes if auth service is available
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.RateLimiter)
		authController.RegisterRoutes(router)
	}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	catalogController := NewCatalogController(cfg.CatalogStore)
	collectionsController := NewCollectionsController(cfg.CollectionsStore)
	reviewsController := NewReviewsController(cfg.ReviewStore)
	libraryController := NewLibraryController(cfg.LibraryStore, cfg.SalesStore, cfg.AuthService)
	purchaseController := NewPurchaseController(
		cfg.CatalogStore,
		cfg.LibraryStore,
		cfg.SalesStore,
		cfg.PaymentClient,
		cfg.SettlementService,
		cfg.PublicBaseURL,
	)
	settlementController := NewSettlementController(cfg.SalesStore, cfg.SettlementService, cfg.TaskClient)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Catalog endpoints
	router.GET("/api/books", catalogController.ListBooks)
	router.GET("/api/books/search", catalogController.SearchBooks)
	router.GET("/api/books/free", catalogController.FreeBooks)
	router.GET("/api/books/recent", catalogController.RecentBooks)
	router.GET("/api/books/top-viewed", catalogController.TopViewedBooks)
	router.GET("/api/books/top-rated", catalogController.TopRatedBooks)
	router.GET("/api/books/carousel", catalogController.CarouselBooks)
	router.GET("/api/books/genre/:genre", catalogController.BooksByGenre)
	router.GET("/api/books/:id", catalogController.GetBook)
	router.GET("/api/genres", catalogController.ListGenres)

	// Book cover endpoint
	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.CoverCache, cfg.CatalogStore)
		router.GET("/api/books/:id/cover", coversController.GetCover)
	}

	// Collection endpoints
	router.GET("/api/collections", collectionsController.ListCollections)
	router.GET("/api/collections/:id", collectionsController.GetCollection)

	// Review endpoints
	router.GET("/api/books/:id/reviews", reviewsController.ListReviews)

	// Payment provider callbacks. The provider redirects the buyer's
	// browser here, so these stay outside the authenticated group.
	router.GET("/success", settlementController.Success)
	router.GET("/echec", settlementController.Failure)

	// Everything below requires a logged-in user
	authed := router.Group("/")
	if cfg.AuthMiddleware != nil {
		authed.Use(cfg.AuthMiddleware.RequireAuth())
	}

	authed.POST("/api/books/:id/reviews", reviewsController.AddReview)
	authed.POST("/api/books/:id/favorite", libraryController.AddFavorite)
	authed.DELETE("/api/books/:id/favorite", libraryController.RemoveFavorite)
	authed.GET("/api/favorites", libraryController.ListFavorites)
	authed.POST("/api/books/:id/purchase", purchaseController.Purchase)
	authed.GET("/api/library", libraryController.Library)
	authed.GET("/api/profile", libraryController.Profile)
	authed.PUT("/api/profile", libraryController.UpdateProfile)

	return router
}
