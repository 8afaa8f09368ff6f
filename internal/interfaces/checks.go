package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/papersbook/storefront/internal/audit"
	"github.com/papersbook/storefront/internal/database/books"
	"github.com/papersbook/storefront/internal/database/collections"
	"github.com/papersbook/storefront/internal/database/reviews"
	"github.com/papersbook/storefront/internal/database/sales"
	"github.com/papersbook/storefront/internal/database/users"
	"github.com/papersbook/storefront/internal/http"
	"github.com/papersbook/storefront/internal/settlement"
	"github.com/papersbook/storefront/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// CatalogStore implementations
var _ http.CatalogStore = (*books.Repository)(nil)

// CollectionsStore implementations
var _ http.CollectionsStore = (*collections.Repository)(nil)

// ReviewStore implementations
var _ http.ReviewStore = (*reviews.Repository)(nil)

// LibraryStore implementations
var _ http.LibraryStore = (*users.Repository)(nil)

// SalesStore implementations
var _ http.SalesStore = (*sales.Repository)(nil)
var _ http.SaleHistoryStore = (*sales.Repository)(nil)

// =============================================================================
// Settlement / Background Work
// =============================================================================

// Settlement audit sink implementations
var _ settlement.Auditor = (*audit.Auditor)(nil)

// Audit retention implementations
var _ tasks.AuditEventCleaner = (*audit.Auditor)(nil)
