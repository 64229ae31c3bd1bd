// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/app/system/events"
	"github.com/CorneTubage/assohub/internal/app/system/indexes"
	"github.com/CorneTubage/assohub/internal/app/system/timeouts"
)

// ConnectDB establishes the MongoDB connection and builds the external
// back-end clients (folder backend gateway, event producer).
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}
	logger.Info("mongo connected", zap.String("database", appCfg.MongoDatabase))

	if appCfg.TeamFoldersURL != "" {
		gw, err := sharedfs.NewClient(sharedfs.Config{
			BaseURL:    appCfg.TeamFoldersURL,
			Username:   appCfg.TeamFoldersUser,
			Password:   appCfg.TeamFoldersPass,
			APIVersion: appCfg.TeamFoldersAPIVersion,
		})
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("folder backend client: %w", err)
		}
		deps.Storage = gw
		logger.Info("folder backend configured",
			zap.String("url", appCfg.TeamFoldersURL),
			zap.Int("api_version", appCfg.TeamFoldersAPIVersion))
	} else {
		deps.Storage = sharedfs.Disabled()
		logger.Warn("teamfolders_url not set; folder provisioning disabled")
	}

	deps.Events = events.NewProducer(appCfg.KafkaBrokers, appCfg.KafkaTopic, logger)

	return deps, nil
}

// EnsureSchema creates the MongoDB indexes the stores rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return indexes.EnsureAll(ctx, deps.MongoDatabase)
}
