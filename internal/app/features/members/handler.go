// internal/app/features/members/handler.go
package members

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/features/respond"
	"github.com/CorneTubage/assohub/internal/app/registry"
	"github.com/CorneTubage/assohub/internal/app/system/auth"
	"github.com/CorneTubage/assohub/internal/app/system/authz"
	"github.com/CorneTubage/assohub/internal/app/system/timeouts"
	"github.com/CorneTubage/assohub/internal/domain/models"
)

// Handler serves association rosters and role assignment.
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

// associationCode resolves the {id} path parameter to the association's
// code, applying the caller's visibility rules on the way. ok=false means
// the id is not a valid ObjectID.
func (h *Handler) associationCode(ctx context.Context, r *http.Request) (string, bool, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return "", false, nil
	}
	asso, err := h.Registry.GetAssociation(ctx, h.actor(r), id)
	if err != nil {
		return "", true, err
	}
	return asso.Code, true, nil
}

// ServeRoster handles GET /associations/{id}/members.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	code, ok, err := h.associationCode(ctx, r)
	if !ok {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid association id"})
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	roster, err := h.Registry.Roster(ctx, h.actor(r), code)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if roster == nil {
		roster = []models.Membership{}
	}
	respond.JSON(w, http.StatusOK, roster)
}

// ServeUpsert handles POST /associations/{id}/members: add a member or
// change their role.
func (h *Handler) ServeUpsert(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": "role"})
		return
	}
	userID := auth.NormalizeLoginID(req.UserID)

	ctx, cancel := h.reqCtx(r)
	defer cancel()

	code, ok, err := h.associationCode(ctx, r)
	if !ok {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid association id"})
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	m, err := h.Registry.UpsertMember(ctx, h.actor(r), code, userID, role)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

// ServeRemove handles DELETE /associations/{id}/members/{userID}.
func (h *Handler) ServeRemove(w http.ResponseWriter, r *http.Request) {
	userID := auth.NormalizeLoginID(chi.URLParam(r, "userID"))

	ctx, cancel := h.reqCtx(r)
	defer cancel()

	code, ok, err := h.associationCode(ctx, r)
	if !ok {
		respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid association id"})
		return
	}
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}

	if err := h.Registry.RemoveMember(ctx, h.actor(r), code, userID); err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeUserMemberships handles GET /users/{userID}/memberships: everything
// one user is across all associations.
func (h *Handler) ServeUserMemberships(w http.ResponseWriter, r *http.Request) {
	userID := auth.NormalizeLoginID(chi.URLParam(r, "userID"))

	ctx, cancel := h.reqCtx(r)
	defer cancel()

	ms, err := h.Registry.UserMemberships(ctx, h.actor(r), userID)
	if err != nil {
		respond.Err(w, h.Log, err)
		return
	}
	if ms == nil {
		ms = []models.Membership{}
	}
	respond.JSON(w, http.StatusOK, ms)
}

// ServeUserPermissions handles GET /user/permissions: the caller's
// platform-wide capabilities, used by the front end for menu rendering.
func (h *Handler) ServeUserPermissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.reqCtx(r)
	defer cancel()

	respond.JSON(w, http.StatusOK, h.Registry.UserPermissions(ctx, h.actor(r)))
}
