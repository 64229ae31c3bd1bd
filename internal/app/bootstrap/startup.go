// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/gateway/directory"
	"github.com/CorneTubage/assohub/internal/app/reconcile"
	"github.com/CorneTubage/assohub/internal/app/registry"
	associationstore "github.com/CorneTubage/assohub/internal/app/store/associations"
	membershipstore "github.com/CorneTubage/assohub/internal/app/store/memberships"
	"github.com/CorneTubage/assohub/internal/app/system/auth"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. AssoHub
// initializes the session store and makes sure the global role groups exist
// in the directory.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	svc := buildRegistry(appCfg, deps, logger)
	if err := svc.Startup(ctx); err != nil {
		return err
	}

	logger.Info("registry initialized")
	return nil
}

// buildRegistry assembles the registry service and its reconciliation
// engine from the shared back-end dependencies.
func buildRegistry(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *registry.Service {
	db := deps.MongoDatabase
	assos := associationstore.New(db)
	members := membershipstore.New(db)
	dir := directory.NewMongo(db)

	engine := reconcile.New(dir, deps.Storage, members, logger)
	engine.SetDefaultQuota(int64(appCfg.DefaultQuotaGiB) << 30)

	return registry.New(assos, members, dir, engine, deps.Events, logger)
}
