// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS, timeouts). AppConfig is everything specific to AssoHub: the Mongo
// connection, the session cookie, the folder backend, and the event stream.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// Folder backend (team folders API) configuration
	TeamFoldersURL        string // Base URL of the team folders API (blank disables provisioning)
	TeamFoldersUser       string // Basic-auth username
	TeamFoldersPass       string // Basic-auth password
	TeamFoldersAPIVersion int    // Backend API generation: 1 or 2

	// DefaultQuotaGiB is the quota applied to newly provisioned association
	// folders, in GiB.
	DefaultQuotaGiB int

	// Kafka event stream configuration (blank brokers disables publishing)
	KafkaBrokers []string
	KafkaTopic   string
}
