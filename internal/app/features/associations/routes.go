// internal/app/features/associations/routes.go
package associations

import "github.com/go-chi/chi/v5"

// Routes returns the association subrouter; mounted under
// /api/1.0/associations behind the signed-in middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.ServeCreate)
	r.Get("/names", h.ServeNames)
	r.Get("/{id}", h.ServeGet)
	r.Put("/{id}", h.ServeRename)
	r.Delete("/{id}", h.ServeDelete)
	r.Get("/{id}/stats", h.ServeStats)
	r.Get("/{id}/permissions", h.ServePermissions)
	return r
}
