package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./storefront.db"
)
