// internal/app/features/health/handler.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/gateway/sharedfs"
	"github.com/CorneTubage/assohub/internal/app/system/timeouts"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Storage sharedfs.Gateway
	Log     *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, the folder
// backend gateway and a logger.
func NewHandler(client *mongo.Client, storage sharedfs.Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Storage: storage,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Storage  string `json:"storage,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "storage":"reachable" }
//
// On DB failure: 503. A folder-backend outage is informational only: the
// registry still works and reconciliation self-heals, so the status stays ok.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	// Check database
	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	// Check folder backend (non-blocking, informational only)
	if h.Storage != nil {
		if _, err := h.Storage.Folders(ctx); err != nil {
			resp.Storage = "unreachable"
		} else {
			resp.Storage = "reachable"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
