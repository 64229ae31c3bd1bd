// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	associationsfeature "github.com/CorneTubage/assohub/internal/app/features/associations"
	healthfeature "github.com/CorneTubage/assohub/internal/app/features/health"
	loginfeature "github.com/CorneTubage/assohub/internal/app/features/login"
	logoutfeature "github.com/CorneTubage/assohub/internal/app/features/logout"
	membersfeature "github.com/CorneTubage/assohub/internal/app/features/members"
	userinfofeature "github.com/CorneTubage/assohub/internal/app/features/userinfo"
	"github.com/CorneTubage/assohub/internal/app/gateway/directory"
	"github.com/CorneTubage/assohub/internal/app/system/auth"
	"github.com/CorneTubage/assohub/internal/app/system/limits"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. AssoHub is a JSON API: every route under
// /api/1.0 requires a signed-in session; /health, /login, /logout and
// /api/user are open.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	reg := buildRegistry(appCfg, deps, logger)
	dir := directory.NewMongo(deps.MongoDatabase)

	r := chi.NewRouter()

	r.Use(limits.JSONBody)

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Storage, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(dir, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Session introspection for the front end
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// The registry API proper
	r.Route("/api/1.0", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		assoHandler := associationsfeature.NewHandler(reg, logger)
		membersHandler := membersfeature.NewHandler(reg, logger)

		// Roster routes nest under the association subrouter so the
		// {id} parameter is shared.
		ar := associationsfeature.Routes(assoHandler)
		membersfeature.MountRoutes(ar, membersHandler)
		r.Mount("/associations", ar)

		membersfeature.MountUserRoutes(r, membersHandler)
	})

	return r, nil
}
