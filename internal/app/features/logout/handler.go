// internal/app/features/logout/handler.go
package logout

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/CorneTubage/assohub/internal/app/system/auth"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeLogout handles POST /logout: clears the session. Always succeeds,
// signed in or not.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.CurrentUser(r); ok {
		h.Log.Info("logout", zap.String("user", user.ID))
	}
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Warn("logout: session clear failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
