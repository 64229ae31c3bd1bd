// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// MountRoutes registers the roster endpoints on the associations router,
// nesting them under the association they belong to.
func MountRoutes(r chi.Router, h *Handler) {
	r.Route("/{id}/members", func(r chi.Router) {
		r.Get("/", h.ServeRoster)
		r.Post("/", h.ServeUpsert)
		r.Delete("/{userID}", h.ServeRemove)
	})
}

// MountUserRoutes registers the user-side lookups on the API root router.
func MountUserRoutes(r chi.Router, h *Handler) {
	r.Get("/users/{userID}/memberships", h.ServeUserMemberships)
	r.Get("/user/permissions", h.ServeUserPermissions)
}
