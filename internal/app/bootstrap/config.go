// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for AssoHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_key, etc.
//   - Environment variables: ASSOHUB_MONGO_URI, ASSOHUB_SESSION_KEY, etc.
//   - Command-line flags: --mongo_uri, --session_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "assohub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Folder backend (team folders API)
	{Name: "teamfolders_url", Default: "", Desc: "Base URL of the team folders API (blank disables folder provisioning)"},
	{Name: "teamfolders_user", Default: "", Desc: "Team folders API basic-auth username"},
	{Name: "teamfolders_pass", Default: "", Desc: "Team folders API basic-auth password"},
	{Name: "teamfolders_api_version", Default: 1, Desc: "Team folders API generation: 1 or 2"},
	{Name: "default_quota_gib", Default: 10, Desc: "Quota for newly provisioned association folders, in GiB"},

	// Event stream
	{Name: "kafka_brokers", Default: "", Desc: "Comma-separated Kafka broker list (blank disables event publishing)"},
	{Name: "kafka_topic", Default: "assohub.events", Desc: "Kafka topic for registry events"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, ASSOHUB_* for app) and
// command-line flags, merging with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "ASSOHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionDomain: appValues.String("session_domain"),

		TeamFoldersURL:        appValues.String("teamfolders_url"),
		TeamFoldersUser:       appValues.String("teamfolders_user"),
		TeamFoldersPass:       appValues.String("teamfolders_pass"),
		TeamFoldersAPIVersion: appValues.Int("teamfolders_api_version"),
		DefaultQuotaGiB:       appValues.Int("default_quota_gib"),

		KafkaBrokers: splitBrokers(appValues.String("kafka_brokers")),
		KafkaTopic:   appValues.String("kafka_topic"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// AssoHub validates the MongoDB URI format and the folder backend API
// version to catch configuration errors early, before connecting.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if v := appCfg.TeamFoldersAPIVersion; v != 1 && v != 2 {
		return fmt.Errorf("teamfolders_api_version must be 1 or 2, got %d", v)
	}

	if len(appCfg.KafkaBrokers) > 0 && appCfg.KafkaTopic == "" {
		return fmt.Errorf("kafka_topic is required when kafka_brokers is set")
	}

	return nil
}

// splitBrokers turns "host1:9092, host2:9092" into a clean slice.
func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
