package constants

import "time"

const (
	GithubCacheTTL   = 10 * time.Minute
	TokenExpiryDelta = 10 * time.Second
)

const (
	ExternalAPITimeout = 10 * time.Second
	StoreTimeout       = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	RecentOrdersLimit = 30
	ReplayCount       = 10
	MaxBodyBytes      = 1 << 20
	EventBuffer       = 10
	SSEHeartbeat      = 25 * time.Second

	// MaxImportBytes bounds a whole exported document, which grows past MaxBodyBytes
	// long before any single request does.
	MaxImportBytes = 64 << 20
)

const (
	MarketplaceKey    = "demo_marketplace_db_v1"
	SessionKeyPrefix  = "demo_marketplace_session_v1:"
	TeamKey           = "team.json"
	SessionCookieName = "market_session"
	ExportFileName    = "demo_marketplace_export.json"
)
