// internal/app/features/associations/handler.go
package associations

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/features/respond"
	"github.com/CorneTubage/assohub/internal/app/registry"
	"github.com/CorneTubage/assohub/internal/app/system/authz"
	"github.com/CorneTubage/assohub/internal/app/system/timeouts"
	"github.com/CorneTubage/assohub/internal/domain/models"
)

// Handler serves the association CRUD surface.
type Handler struct {
	Registry *registry.Service
	Log      *zap.Logger
}

func NewHandler(reg *registry.Service, logger *zap.Logger) *Handler {
	return &Handler{Registry: reg, Log: logger}
}

func (h *Handler) actor(r *http.Request) registry.Actor {
	userID, _, admin, _ := authz.UserCtx(r)
	return registry.Actor{ID: userID, Admin: admin}
}

func (h *Handler) reqCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeouts.Medium())
}

// ServeList handles GET /. Admins see every association, members their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	assos, err := h.Registry.ListAssociations(ctx, h.actor(r))
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if assos == nil {
		assos = []models.Association{}
	}
	respond.JSON(w, http.StatusOK, assos)
}

// ServeNames handles GET /names: every display name, unscoped.
func (h *Handler) ServeNames(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	names, err := h.Registry.AssociationNames(ctx)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	respond.JSON(w, http.StatusOK, names)
}

// ServeCreate handles POST /.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := h.reqCtx(r)
	defer cancel()

	asso, err := h.Registry.CreateAssociation(ctx, h.actor(r), req.Name, req.Code)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, asso)
}

// ServeGet handles GET /{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	asso, err := h.Registry.GetAssociation(ctx, h.actor(r), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, asso)
}

// ServeRename handles PUT /{id}.
func (h *Handler) ServeRename(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := h.reqCtx(r)
	defer cancel()

	asso, err := h.Registry.RenameAssociation(ctx, h.actor(r), id, req.Name)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, asso)
}

// ServeDelete handles DELETE /{id}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	if err := h.Registry.DeleteAssociation(ctx, h.actor(r), id); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeStats handles GET /{id}/stats: live folder usage.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	stats, err := h.Registry.Stats(ctx, h.actor(r), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, stats)
}

// ServePermissions handles GET /{id}/permissions.
func (h *Handler) ServePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	flags, err := h.Registry.Permissions(ctx, h.actor(r), id)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, flags)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid association id"})
		return primitive.NilObjectID, false
	}
	return id, true
}
