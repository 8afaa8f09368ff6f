package http

import (
	"github.com/papersbook/storefront/internal/audit"
	"github.com/papersbook/storefront/internal/auth"
	"github.com/papersbook/storefront/internal/config"
	"github.com/papersbook/storefront/internal/covers"
	"github.com/papersbook/storefront/internal/database"
	"github.com/papersbook/storefront/internal/payment"
	"github.com/papersbook/storefront/internal/settlement"
	"github.com/papersbook/storefront/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Auditor  *audit.Auditor

	// Catalog
	CatalogStore     CatalogStore
	CollectionsStore CollectionsStore

	// Cover caching (optional)
	CoverCache *covers.Cache

	// Reviews
	ReviewStore ReviewStore

	// Library, favorites, profile
	LibraryStore LibraryStore

	// Commerce
	SalesStore        SalesStore
	PaymentClient     *payment.Client
	SettlementService *settlement.Service
	PublicBaseURL     string

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
