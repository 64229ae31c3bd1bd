// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The human-readable directory login id users
//     type to sign in; it is also the directory document _id.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/CorneTubage/assohub/internal/app/gateway/directory"
	"github.com/CorneTubage/assohub/internal/app/system/auth"
	"github.com/CorneTubage/assohub/internal/app/system/ratelimit"
	"github.com/CorneTubage/assohub/internal/app/system/timeouts"
)

type Handler struct {
	Directory directory.Gateway
	Limiter   *ratelimit.LoginLimiter
	Log       *zap.Logger
}

func NewHandler(dir directory.Gateway, logger *zap.Logger) *Handler {
	return &Handler{
		Directory: dir,
		Limiter:   ratelimit.NewLoginLimiter(),
		Log:       logger,
	}
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

// ServeLogin handles POST /login. On success it sets the session cookie and
// returns the signed-in identity. Wrong id and wrong password are
// indistinguishable on the wire.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid JSON body"})
		return
	}
	userID := auth.NormalizeLoginID(req.LoginID)
	if userID == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "login_id and password are required"})
		return
	}

	if allowed, reason := h.Limiter.Check(r, userID); !allowed {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Directory.LookupUser(ctx, userID)
	if err != nil {
		if errors.Is(err, directory.ErrUnavailable) {
			h.Log.Error("login: directory unavailable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "directory unavailable"})
			return
		}
		h.Log.Error("login: lookup failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
		return
	}

	su := &auth.SessionUser{ID: user.ID, Name: user.FullName, Admin: user.Admin}
	if err := auth.SignIn(w, r, su); err != nil {
		h.Log.Error("login: session write failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}

	h.Limiter.ResetAccount(userID)
	h.Log.Info("login", zap.String("user", user.ID))
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":    user.ID,
		"name":  user.FullName,
		"admin": user.Admin,
	})
}
